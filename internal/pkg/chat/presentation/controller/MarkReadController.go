package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/adapter"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
)

// MarkReadController is the explicit mark-as-read endpoint. It shares the
// read-receipt synchronizer with the websocket join path, then notifies the
// room over the live hub.
type MarkReadController struct {
	UC         *usecase.MarkMessagesReadUseCase
	Dispatcher *event.Dispatcher
}

func NewMarkReadController(pool *pgxpool.Pool, dispatcher *event.Dispatcher) *MarkReadController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &MarkReadController{UC: usecase.NewMarkMessagesReadUseCase(repo), Dispatcher: dispatcher}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
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

		newlyRead, err := h.UC.Execute(ctx, usecase.MarkMessagesReadInput{
			ConversationID: conversationID,
			ReaderID:       user.ID,
		})
		if err != nil {
			respondConversationError(c, err, "mark messages read")
			return
		}

		h.Dispatcher.NotifyRead(conversationID, user.ID)

		c.JSON(http.StatusOK, gin.H{"message": "messages marked as read", "newlyRead": newlyRead})
	}
}
