package chat

import (
	"errors"
	"time"
)

// Domain-level errors for chat behaviors
var (
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrNotParticipant       = errors.New("chat: user is not a participant in the conversation")
	ErrSameParticipant      = errors.New("chat: a conversation needs two distinct participants")
	ErrUnknownItemType      = errors.New("chat: item type must be Product or Classified")
	ErrEmptyContent         = errors.New("chat: message content is empty")
	ErrContentTooLong       = errors.New("chat: message content exceeds the maximum length")
)

// ItemType tags the listing a conversation was started about.
type ItemType string

const (
	ItemTypeProduct    ItemType = "Product"
	ItemTypeClassified ItemType = "Classified"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeClassified
}

// Conversation is a 1:1 thread between two users about a single listing.
// At most one active conversation may exist per unordered participant pair
// and (ItemType, ItemID); the persistence layer enforces the uniqueness.
type Conversation struct {
	ID            string
	Participants  []string       // exactly two user IDs, order not significant
	LastMessageID *string        // most recent message, nil for a fresh thread
	UnreadCount   map[string]int // participant ID -> messages not yet read
	ItemType      ItemType
	ItemID        string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasParticipant tells whether userID is part of this conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	if c == nil {
		return false
	}
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer of userID, or "" when userID is not
// a participant.
func (c *Conversation) OtherParticipant(userID string) string {
	if c == nil {
		return ""
	}
	for _, id := range c.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}

// UnreadFor returns userID's unread counter with default-zero semantics.
func (c *Conversation) UnreadFor(userID string) int {
	if c == nil || c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID]
}

// NewConversation validates and shapes a conversation between two users
// about one listing. Counters start at zero for both participants.
func NewConversation(userA, userB string, itemType ItemType, itemID string) (*Conversation, error) {
	if userA == "" || userB == "" || itemID == "" {
		return nil, errors.New("chat: participants and item id are required")
	}
	if userA == userB {
		return nil, ErrSameParticipant
	}
	if !itemType.Valid() {
		return nil, ErrUnknownItemType
	}

	now := time.Now().UTC()
	return &Conversation{
		Participants: []string{userA, userB},
		UnreadCount:  map[string]int{userA: 0, userB: 0},
		ItemType:     itemType,
		ItemID:       itemID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
