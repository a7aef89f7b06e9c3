package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/adapter"
	userport "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// CreateConversationController opens a thread with another user about a
// listing, or returns the existing one for the same pair and item.
type CreateConversationController struct {
	UC    *usecase.CreateConversationUseCase
	Users userport.UserRepository
}

func NewCreateConversationController(pool *pgxpool.Pool, users userport.UserRepository) *CreateConversationController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &CreateConversationController{UC: usecase.NewCreateConversationUseCase(repo), Users: users}
}

type createConversationRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
	ItemType      string `json:"itemType" binding:"required"`
	ItemID        string `json:"itemId" binding:"required"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Resolve the peer up front so a bad participant id is a 404, not a
		// dangling thread.
		if _, err := h.Users.FindByID(ctx, req.ParticipantID); err != nil {
			if errors.Is(err, userport.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			slog.Error("participant lookup failed", "user", req.ParticipantID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
			return
		}

		out, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			CreatorID:     user.ID,
			ParticipantID: req.ParticipantID,
			ItemType:      chat.ItemType(req.ItemType),
			ItemID:        req.ItemID,
		})
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrUnknownItemType), errors.Is(err, chat.ErrSameParticipant):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, usecase.ErrPersistence):
				slog.Error("create conversation failed", "user", user.ID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		status := http.StatusOK
		if out.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"data": conversationView(ctx, h.Users, out.Conversation, user.ID)})
	}
}
