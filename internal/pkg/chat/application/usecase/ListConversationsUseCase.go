package usecase

import (
	"context"
	"fmt"

	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the caller identity.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the caller's active conversations, most
// recent activity first, each with its last message hydrated.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]repository.ConversationWithLast, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}

	items, err := uc.Repo.ListConversationsForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}
