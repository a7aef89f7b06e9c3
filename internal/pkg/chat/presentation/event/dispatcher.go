package event

import (
	"context"
	"log/slog"

	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/realtime"
	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// Dispatcher fans durable chat state changes out to live connections. Both
// the websocket controller and the background send worker deliver through
// it, so queued sends reach rooms the same way interactive ones do.
// All delivery is best-effort: a slow or gone peer never fails the send.
type Dispatcher struct {
	Hub   *realtime.Hub
	Users repository.UserRepository
}

func NewDispatcher(hub *realtime.Hub, users repository.UserRepository) *Dispatcher {
	return &Dispatcher{Hub: hub, Users: users}
}

// DeliverMessage emits newMessage to the conversation room and a private
// messageNotification to every other participant who is currently online.
// Must only be called after the message is durable.
func (d *Dispatcher) DeliverMessage(ctx context.Context, conv *chat.Conversation, msg *chat.Message) {
	sender := d.senderOf(ctx, msg.SenderID)
	payload := NewMessagePayload(*msg, sender)

	if raw, err := Marshal(NewMessage, payload); err == nil {
		d.Hub.Broadcast(conv.ID, raw, "")
	}

	notification, err := Marshal(MessageNotification, NotificationPayload{
		ConversationID: conv.ID,
		Message:        payload,
	})
	if err != nil {
		return
	}
	for _, participantID := range conv.Participants {
		if participantID == msg.SenderID {
			continue
		}
		if d.Hub.IsOnline(participantID) {
			d.Hub.NotifyUser(participantID, notification)
		}
	}
}

// BroadcastStatus announces a presence change to every connected client.
func (d *Dispatcher) BroadcastStatus(userID, status string) {
	if raw, err := Marshal(UserStatus, StatusPayload{UserID: userID, Status: status}); err == nil {
		d.Hub.BroadcastAll(raw)
	}
}

// NotifyRead tells the other room members that readerID caught up.
func (d *Dispatcher) NotifyRead(conversationID, readerID string) {
	raw, err := Marshal(MessagesRead, MessagesReadPayload{
		ConversationID: conversationID,
		UserID:         readerID,
	})
	if err != nil {
		return
	}
	d.Hub.Broadcast(conversationID, raw, readerID)
}

func (d *Dispatcher) senderOf(ctx context.Context, senderID string) repository.User {
	u, err := d.Users.FindByID(ctx, senderID)
	if err != nil {
		slog.Warn("sender lookup failed, delivering with bare id", "user", senderID, "error", err)
		return repository.User{ID: senderID}
	}
	return *u
}
