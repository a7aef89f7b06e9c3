package usecase

import (
	"context"
	"fmt"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to persist a new message.
// Content validation (trim, length bound) lives in chat.NewMessage to
// preserve domain integrity.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageOutput returns the durable message together with the owning
// conversation so callers can fan out to its participants.
type SendMessageOutput struct {
	Message      *chat.Message
	Conversation *chat.Conversation
}

// SendMessageUseCase runs the message delivery pipeline up to durability:
// validate, persist the message, and commit the conversation rollup (last
// message pointer, unread increments) in the same store transaction. Fan-out
// happens only after Execute returns without error.
type SendMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}

	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.FindConversation(ctx, in.ConversationID)
	if err != nil {
		if err == chat.ErrConversationNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		if err == chat.ErrConversationNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Reflect the rollup in the in-memory copy handed to fan-out.
	conv.LastMessageID = &saved.ID
	for _, id := range conv.Participants {
		if id != in.SenderID {
			conv.UnreadCount[id]++
		}
	}

	return &SendMessageOutput{Message: saved, Conversation: conv}, nil
}
