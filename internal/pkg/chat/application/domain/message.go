package chat

import (
	"strings"
	"time"
)

// MaxContentLength bounds the text content of a single message.
const MaxContentLength = 1000

// Message is a log entry in a conversation. Once persisted it is never
// physically removed; IsDeleted marks removal without erasing history and
// ReadBy only grows until then.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	ReadBy         []string // includes the sender from creation
	IsDeleted      bool
	CreatedAt      time.Time
}

// ReadByUser tells whether userID already acknowledged this message.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// NewMessage validates and shapes a message ready to persist. Content is
// trimmed, must be non-empty afterwards and must not exceed MaxContentLength.
// The sender is recorded as having read their own message.
func NewMessage(conversationID, senderID, content string) (*Message, error) {
	if conversationID == "" {
		return nil, ErrConversationNotFound
	}
	if senderID == "" {
		return nil, ErrNotParticipant
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}
	if len([]rune(trimmed)) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
		ReadBy:         []string{senderID},
		CreatedAt:      time.Now().UTC(),
	}, nil
}
