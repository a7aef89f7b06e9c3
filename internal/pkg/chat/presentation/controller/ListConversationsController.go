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

// ListConversationsController serves the caller's inbox: active
// conversations with the peer's display fields, the last message and the
// caller's unread counter.
type ListConversationsController struct {
	UC    *usecase.ListConversationsUseCase
	Users userport.UserRepository
}

func NewListConversationsController(pool *pgxpool.Pool, users userport.UserRepository) *ListConversationsController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo), Users: users}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: user.ID})
		if err != nil {
			if errors.Is(err, usecase.ErrPersistence) {
				slog.Error("list conversations failed", "user", user.ID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(items))
		for _, item := range items {
			conv := item.Conversation
			entry := gin.H{
				"id":          conv.ID,
				"unreadCount": conv.UnreadFor(user.ID),
				"relatedTo":   gin.H{"itemType": conv.ItemType, "itemId": conv.ItemID},
				"updatedAt":   conv.UpdatedAt,
			}
			if peerID := conv.OtherParticipant(user.ID); peerID != "" {
				entry["otherParticipant"] = h.peerOf(ctx, peerID)
			}
			if item.LastMessage != nil {
				entry["lastMessage"] = gin.H{
					"id":        item.LastMessage.ID,
					"sender":    item.LastMessage.SenderID,
					"content":   item.LastMessage.Content,
					"createdAt": item.LastMessage.CreatedAt,
				}
			}
			out = append(out, entry)
		}

		c.JSON(http.StatusOK, gin.H{"count": len(out), "data": out})
	}
}

func (h *ListConversationsController) peerOf(ctx context.Context, peerID string) any {
	u, err := h.Users.FindByID(ctx, peerID)
	if err != nil {
		return userport.User{ID: peerID}
	}
	return u
}

// conversationView renders the shared detail shape for get/create responses.
func conversationView(ctx context.Context, users userport.UserRepository, conv *chat.Conversation, callerID string) gin.H {
	view := gin.H{
		"id":          conv.ID,
		"unreadCount": conv.UnreadFor(callerID),
		"relatedTo":   gin.H{"itemType": conv.ItemType, "itemId": conv.ItemID},
		"createdAt":   conv.CreatedAt,
		"updatedAt":   conv.UpdatedAt,
	}
	if peerID := conv.OtherParticipant(callerID); peerID != "" {
		if u, err := users.FindByID(ctx, peerID); err == nil {
			view["otherParticipant"] = u
		} else {
			view["otherParticipant"] = userport.User{ID: peerID}
		}
	}
	return view
}
