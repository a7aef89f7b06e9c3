package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
)

func TestMarkMessagesReadFlipsReceiptsAndResetsCounter(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	send := NewSendMessageUseCase(repo)
	markRead := NewMarkMessagesReadUseCase(repo)

	for i := 0; i < 3; i++ {
		_, err := send.Execute(context.Background(), SendMessageInput{
			ConversationID: convID, SenderID: "buyer", Content: "ping",
		})
		require.NoError(t, err)
	}

	n, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: convID, ReaderID: "seller",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	conv, err := repo.FindConversation(context.Background(), convID)
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadFor("seller"))

	msgs, err := repo.ListMessages(context.Background(), convID, 10, 0)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.True(t, m.ReadByUser("seller"))
		assert.True(t, m.ReadByUser("buyer")) // sender reads at creation
	}
}

func TestMarkMessagesReadIsIdempotent(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	send := NewSendMessageUseCase(repo)
	markRead := NewMarkMessagesReadUseCase(repo)

	_, err := send.Execute(context.Background(), SendMessageInput{
		ConversationID: convID, SenderID: "buyer", Content: "ping",
	})
	require.NoError(t, err)

	first, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: convID, ReaderID: "seller",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: convID, ReaderID: "seller",
	})
	require.NoError(t, err)
	assert.Zero(t, second, "re-running must report zero newly read messages")
}

func TestMarkMessagesReadSkipsOwnMessages(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	send := NewSendMessageUseCase(repo)
	markRead := NewMarkMessagesReadUseCase(repo)

	_, err := send.Execute(context.Background(), SendMessageInput{
		ConversationID: convID, SenderID: "seller", Content: "still here",
	})
	require.NoError(t, err)

	n, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: convID, ReaderID: "seller",
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkMessagesReadRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	convID := repo.seedConversation("buyer", "seller", chat.ItemTypeProduct, "item-1")
	markRead := NewMarkMessagesReadUseCase(repo)

	_, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: convID, ReaderID: "stranger",
	})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestMarkMessagesReadUnknownConversation(t *testing.T) {
	markRead := NewMarkMessagesReadUseCase(newFakeChatRepo())

	_, err := markRead.Execute(context.Background(), MarkMessagesReadInput{
		ConversationID: "missing", ReaderID: "seller",
	})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}
