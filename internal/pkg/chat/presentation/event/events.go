package event

import (
	"encoding/json"
	"time"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// Wire-level event names, shared by inbound and outbound frames.
const (
	// inbound
	JoinConversation  = "joinConversation"
	LeaveConversation = "leaveConversation"
	SendMessage       = "sendMessage"
	MarkRead          = "markRead"

	// outbound
	Connected           = "connected"
	UserStatus          = "userStatus"
	MessagesRead        = "messagesRead"
	NewMessage          = "newMessage"
	MessageNotification = "messageNotification"
	Error               = "error"
)

// Envelope is the frame shape on the wire: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Marshal encodes an outbound frame.
func Marshal(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: name, Data: raw})
}

// StatusPayload announces presence changes to every connected client.
type StatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"` // "online" or "offline"
}

// MessagesReadPayload tells room members that a participant caught up.
type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// MessagePayload is a message enriched with the sender's display fields.
type MessagePayload struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	Sender         repository.User `json:"sender"`
	Content        string          `json:"content"`
	ReadBy         []string        `json:"readBy"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NotificationPayload is addressed to one user's private channel so clients
// not currently viewing the conversation still receive a signal.
type NotificationPayload struct {
	ConversationID string         `json:"conversationId"`
	Message        MessagePayload `json:"message"`
}

// ErrorPayload is scoped to the originating connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessagePayload combines a persisted message with its sender projection.
func NewMessagePayload(m chat.Message, sender repository.User) MessagePayload {
	return MessagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Content:        m.Content,
		ReadBy:         m.ReadBy,
		CreatedAt:      m.CreatedAt,
	}
}
