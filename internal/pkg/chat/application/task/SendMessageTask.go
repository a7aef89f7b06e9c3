package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	queueport "github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/queue/port"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/adapter"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
)

// SendMessageTaskType is the queue task name for sending a chat message.
const SendMessageTaskType = "chat:send_message"

// SendMessagePayload is the JSON payload transported via the queue. Kept
// decoupled from domain types to avoid coupling JSON tags to the domain.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
}

// RegisterSendMessageTask binds the worker-side handler. It executes the
// same delivery pipeline as the websocket path and fans out through the
// dispatcher, so queued sends reach live rooms too.
func RegisterSendMessageTask(srv queueport.Server, pool *pgxpool.Pool, dispatcher *event.Dispatcher) {
	repo := repoAdapter.NewPgChatRepository(pool)
	uc := usecase.NewSendMessageUseCase(repo)

	srv.Register(SendMessageTaskType, func(ctx context.Context, t queueport.Task) error {
		var p SendMessagePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload; retrying cannot help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		out, err := uc.Execute(ctx, usecase.SendMessageInput{
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			Content:        p.Content,
		})
		if err != nil {
			// Validation and membership failures are permanent; only
			// persistence errors are worth a retry.
			if errors.Is(err, usecase.ErrPersistence) {
				return err
			}
			slog.Warn("dropping unprocessable send task", "conversation", p.ConversationID, "error", err)
			return nil
		}

		dispatcher.DeliverMessage(ctx, out.Conversation, out.Message)
		return nil
	})
}
