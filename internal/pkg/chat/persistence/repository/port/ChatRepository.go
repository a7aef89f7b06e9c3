package repository

import (
	"context"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
)

// ConversationWithLast pairs a conversation with its hydrated last message,
// as needed by inbox listings.
type ConversationWithLast struct {
	Conversation chat.Conversation
	LastMessage  *chat.Message
}

// ChatRepository defines persistence operations for the chat domain.
//
// Consistency contract:
//   - SaveMessage persists the message AND the conversation rollup
//     (last message pointer, per-recipient unread increments) in a single
//     transaction. Increments are expressed in SQL against the current
//     stored value, so concurrent sends never lose updates.
//   - MarkMessagesRead flips read receipts and zeroes the reader's unread
//     counter in a single transaction, with set-union semantics: re-running
//     it reports zero newly read messages.
type ChatRepository interface {
	// CreateConversation inserts the conversation and its participant rows.
	// When an active conversation for the same unordered pair and item
	// already exists, the existing id is returned with created=false.
	CreateConversation(ctx context.Context, c chat.Conversation) (id string, created bool, err error)

	FindConversation(ctx context.Context, id string) (*chat.Conversation, error)
	FindConversationByKey(ctx context.Context, userA, userB string, itemType chat.ItemType, itemID string) (*chat.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]ConversationWithLast, error)

	// SaveMessage returns the message with its store-assigned id and timestamp.
	SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error)

	// ListMessages returns non-deleted messages newest first.
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)
	CountMessages(ctx context.Context, conversationID string) (int, error)

	// MarkMessagesRead returns how many messages were newly marked read.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error)

	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
}
