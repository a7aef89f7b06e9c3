package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
)

func seedHistory(t *testing.T, repo *fakeChatRepo, convID string, count int) {
	t.Helper()
	send := NewSendMessageUseCase(repo)
	for i := 1; i <= count; i++ {
		_, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID, SenderID: "buyer", Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
}

func TestGetMessagesFirstPageIsMostRecentChronological(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	seedHistory(t, repo, convID, 25)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "seller", Page: 1, Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, out.Messages, 10)
	// most recent ten, oldest of them first
	assert.Equal(t, "message 16", out.Messages[0].Content)
	assert.Equal(t, "message 25", out.Messages[9].Content)
	assert.Equal(t, 25, out.Total)
	assert.Equal(t, 3, out.TotalPages)
}

func TestGetMessagesDeeperPages(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	seedHistory(t, repo, convID, 25)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "buyer", Page: 3, Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, out.Messages, 5)
	assert.Equal(t, "message 1", out.Messages[0].Content)
	assert.Equal(t, "message 5", out.Messages[4].Content)
}

func TestGetMessagesPageBeyondEndIsEmpty(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	seedHistory(t, repo, convID, 5)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "buyer", Page: 9, Limit: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
	assert.Equal(t, 5, out.Total)
}

func TestGetMessagesDefaultsPagination(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	seedHistory(t, repo, convID, 3)
	uc := NewGetMessagesUseCase(repo)

	out, err := uc.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "buyer",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 20, out.Limit)
	assert.Len(t, out.Messages, 3)
}

func TestGetMessagesRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	uc := NewGetMessagesUseCase(repo)

	_, err := uc.Execute(context.Background(), GetMessagesInput{
		ConversationID: convID, UserID: "stranger",
	})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}
