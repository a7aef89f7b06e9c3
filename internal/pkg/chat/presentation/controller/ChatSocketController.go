package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/realtime"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/adapter"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
)

// ChatSocketController owns the websocket endpoint for realtime chat
// traffic. Each connection runs its own read loop; every inbound frame is
// handled as an independent event whose failures are converted to a scoped
// error frame on the originating connection, never a dropped process.
type ChatSocketController struct {
	hub             *realtime.Hub
	verifier        *auth.Verifier
	dispatcher      *event.Dispatcher
	sendMessageUC   *usecase.SendMessageUseCase
	joinRoomUC      *usecase.JoinConversationUseCase
	markReadUC      *usecase.MarkMessagesReadUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, hub *realtime.Hub, verifier *auth.Verifier, dispatcher *event.Dispatcher) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ChatSocketController{
		hub:             hub,
		verifier:        verifier,
		dispatcher:      dispatcher,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo),
		joinRoomUC:      usecase.NewJoinConversationUseCase(repo),
		markReadUC:      usecase.NewMarkMessagesReadUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from the SPA origin; restrict when known.
		return true
	},
}

type joinPayload struct {
	ConversationID string `json:"conversationId"`
}

type sendPayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

const defaultReadTimeout = 60 * time.Second

// Handle authenticates the handshake, upgrades to websocket and processes
// frames until the client disconnects. Authentication failure aborts the
// handshake before any room join is possible.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := ctl.verifier.Verify(c.Request.Context(), auth.BearerToken(c.Request))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication error: " + err.Error()})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(user.ID, ws)
		ctl.hub.Register(conn)
		ctl.dispatcher.BroadcastStatus(user.ID, "online")
		slog.Info("user connected", "user", user.ID, "session", conn.ID)

		defer func() {
			ctl.hub.Unregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			// A replaced session leaves the user online through its successor;
			// only an actual departure is announced.
			if !ctl.hub.IsOnline(user.ID) {
				ctl.dispatcher.BroadcastStatus(user.ID, "offline")
			}
			slog.Info("user disconnected", "user", user.ID, "session", conn.ID)
		}()

		ws.SetReadLimit(1 << 16)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := event.Marshal(event.Connected, gin.H{"userId": user.ID}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					slog.Debug("websocket read ended", "user", user.ID, "error", err)
				}
				return
			}

			var frame event.Envelope
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "invalid payload")
				continue
			}

			switch frame.Event {
			case event.JoinConversation:
				ctl.handleJoin(c, conn, frame.Data)
			case event.LeaveConversation:
				ctl.handleLeave(conn, frame.Data)
			case event.SendMessage:
				ctl.handleSend(c, conn, frame.Data)
			case event.MarkRead:
				ctl.handleMarkRead(c, conn, frame.Data)
			default:
				ctl.replyError(conn, "unknown event")
			}
		}
	}
}

// handleJoin grants room membership, then synchronizes read receipts for the
// joining user and tells the other members their messages were seen.
func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		ctl.replyError(conn, "conversationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: p.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, "join conversation", err)
		return
	}

	ctl.hub.Join(p.ConversationID, conn)

	if _, err := ctl.markReadUC.Execute(ctx, usecase.MarkMessagesReadInput{
		ConversationID: p.ConversationID,
		ReaderID:       conn.UserID,
	}); err != nil {
		ctl.handleUseCaseError(conn, "mark messages read", err)
		return
	}

	ctl.dispatcher.NotifyRead(p.ConversationID, conn.UserID)
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		ctl.replyError(conn, "conversationId is required")
		return
	}
	ctl.hub.Leave(p.ConversationID, conn)
}

// handleSend runs the delivery pipeline. Fan-out happens only after the
// message and the conversation rollup are durable; on failure the sender
// alone receives an error frame and nothing is delivered.
func (ctl *ChatSocketController) handleSend(c *gin.Context, conn *realtime.Connection, data json.RawMessage) {
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		ctl.replyError(conn, "conversationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: p.ConversationID,
		SenderID:       conn.UserID,
		Content:        p.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, "send message", err)
		return
	}

	ctl.dispatcher.DeliverMessage(ctx, out.Conversation, out.Message)
}

func (ctl *ChatSocketController) handleMarkRead(c *gin.Context, conn *realtime.Connection, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		ctl.replyError(conn, "conversationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if _, err := ctl.markReadUC.Execute(ctx, usecase.MarkMessagesReadInput{
		ConversationID: p.ConversationID,
		ReaderID:       conn.UserID,
	}); err != nil {
		ctl.handleUseCaseError(conn, "mark messages read", err)
		return
	}

	ctl.dispatcher.NotifyRead(p.ConversationID, conn.UserID)
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		slog.Error(op+" failed", "user", conn.UserID, "error", err)
		ctl.replyError(conn, "Failed to "+op)
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "user is not a participant in this conversation")
	case errors.Is(err, chat.ErrConversationNotFound):
		ctl.replyError(conn, "conversation not found")
	default:
		ctl.replyError(conn, err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, message string) {
	if payload, err := event.Marshal(event.Error, event.ErrorPayload{Message: message}); err == nil {
		_ = conn.Send(payload)
	}
}
