package usecase

import (
	"context"
	"fmt"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// GetConversationInput fetches one conversation on behalf of a participant.
type GetConversationInput struct {
	ConversationID string
	UserID         string
}

// GetConversationUseCase loads a conversation and refuses access to anyone
// who is not one of its two participants.
type GetConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewGetConversationUseCase(repo repository.ChatRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) (*chat.Conversation, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, fmt.Errorf("conversationId and userId are required")
	}

	conv, err := uc.Repo.FindConversation(ctx, in.ConversationID)
	if err != nil {
		if err == chat.ErrConversationNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.UserID) {
		return nil, chat.ErrNotParticipant
	}
	return conv, nil
}
