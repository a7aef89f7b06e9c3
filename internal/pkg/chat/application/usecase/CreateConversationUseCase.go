package usecase

import (
	"context"
	"fmt"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// CreateConversationInput opens (or reuses) a thread between the creator and
// another user about one listing.
type CreateConversationInput struct {
	CreatorID     string
	ParticipantID string
	ItemType      chat.ItemType
	ItemID        string
}

// CreateConversationOutput reports whether a new thread was created or an
// existing one reused.
type CreateConversationOutput struct {
	Conversation *chat.Conversation
	Created      bool
}

// CreateConversationUseCase enforces the one-thread-per-pair-and-item rule:
// an existing conversation for the same unordered pair and listing is
// returned instead of creating a duplicate.
type CreateConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateConversationUseCase(repo repository.ChatRepository) *CreateConversationUseCase {
	return &CreateConversationUseCase{Repo: repo}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*CreateConversationOutput, error) {
	conv, err := chat.NewConversation(in.CreatorID, in.ParticipantID, in.ItemType, in.ItemID)
	if err != nil {
		return nil, err
	}

	id, created, err := uc.Repo.CreateConversation(ctx, *conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	stored, err := uc.Repo.FindConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &CreateConversationOutput{Conversation: stored, Created: created}, nil
}
