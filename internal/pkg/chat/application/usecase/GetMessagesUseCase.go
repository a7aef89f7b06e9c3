package usecase

import (
	"context"
	"fmt"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// GetMessagesInput pages through a conversation's history on behalf of a
// participant. Zero Page/Limit fall back to 1 and 20.
type GetMessagesInput struct {
	ConversationID string
	UserID         string
	Page           int
	Limit          int
}

// GetMessagesOutput is one page of history in chronological order plus the
// pagination envelope.
type GetMessagesOutput struct {
	Messages   []chat.Message
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// GetMessagesUseCase serves paginated history: the store returns the page
// newest first and the slice is reversed for chronological display.
type GetMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessagesUseCase(repo repository.ChatRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) (*GetMessagesOutput, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, fmt.Errorf("conversationId and userId are required")
	}
	if in.Page <= 0 {
		in.Page = defaultPage
	}
	if in.Limit <= 0 {
		in.Limit = defaultLimit
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

	offset := (in.Page - 1) * in.Limit
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	total, err := uc.Repo.CountMessages(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// newest-first page flipped to oldest-first for display
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	totalPages := (total + in.Limit - 1) / in.Limit
	return &GetMessagesOutput{
		Messages:   msgs,
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: totalPages,
	}, nil
}
