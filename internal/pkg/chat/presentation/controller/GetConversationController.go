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

// GetConversationController serves one conversation's detail to a participant.
type GetConversationController struct {
	UC    *usecase.GetConversationUseCase
	Users userport.UserRepository
}

func NewGetConversationController(pool *pgxpool.Pool, users userport.UserRepository) *GetConversationController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &GetConversationController{UC: usecase.NewGetConversationUseCase(repo), Users: users}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.GetConversationInput{
			ConversationID: conversationID,
			UserID:         user.ID,
		})
		if err != nil {
			respondConversationError(c, err, "get conversation")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": conversationView(ctx, h.Users, conv, user.ID)})
	}
}

// respondConversationError maps the error taxonomy onto HTTP statuses.
func respondConversationError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this conversation"})
	case errors.Is(err, usecase.ErrPersistence):
		slog.Error(op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
