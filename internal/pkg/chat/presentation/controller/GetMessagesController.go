package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/adapter"
)

// GetMessagesController serves paginated history for a conversation the
// caller participates in, oldest first within the page.
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool) *GetMessagesController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
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

		page := 1
		limit := 20
		if v := c.Query("page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				page = n
			}
		}
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			UserID:         user.ID,
			Page:           page,
			Limit:          limit,
		})
		if err != nil {
			respondConversationError(c, err, "get messages")
			return
		}

		msgs := make([]gin.H, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, gin.H{
				"id":             m.ID,
				"conversationId": m.ConversationID,
				"sender":         m.SenderID,
				"content":        m.Content,
				"readBy":         m.ReadBy,
				"createdAt":      m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(msgs),
			"total": out.Total,
			"data":  msgs,
			"pagination": gin.H{
				"page":       out.Page,
				"limit":      out.Limit,
				"totalPages": out.TotalPages,
			},
		})
	}
}
