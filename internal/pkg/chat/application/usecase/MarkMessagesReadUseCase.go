package usecase

import (
	"context"
	"fmt"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// MarkMessagesReadInput identifies the conversation and the reader whose
// receipts should be synchronized.
type MarkMessagesReadInput struct {
	ConversationID string
	ReaderID       string
}

// MarkMessagesReadUseCase flips every message the reader has not yet read
// and zeroes their unread counter. Set-union semantics make it idempotent:
// a second run reports zero newly read messages. Triggered both by joining
// a conversation room and by an explicit mark-as-read request.
type MarkMessagesReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkMessagesReadUseCase(repo repository.ChatRepository) *MarkMessagesReadUseCase {
	return &MarkMessagesReadUseCase{Repo: repo}
}

// Execute returns how many messages were newly marked read.
func (uc *MarkMessagesReadUseCase) Execute(ctx context.Context, in MarkMessagesReadInput) (int, error) {
	if in.ConversationID == "" || in.ReaderID == "" {
		return 0, fmt.Errorf("conversationId and readerId are required")
	}

	conv, err := uc.Repo.FindConversation(ctx, in.ConversationID)
	if err != nil {
		if err == chat.ErrConversationNotFound {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.ReaderID) {
		return 0, chat.ErrNotParticipant
	}

	n, err := uc.Repo.MarkMessagesRead(ctx, in.ConversationID, in.ReaderID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return n, nil
}
