package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// fakeChatRepo is an in-memory ChatRepository honoring the same consistency
// contract as the pg adapter: SaveMessage commits the message and the
// conversation rollup together, MarkMessagesRead has set-union semantics.
type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*chat.Conversation
	messages      map[string][]*chat.Message // conversationID -> append order
	nextID        int

	failWith error // when set, every call fails with this error
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string][]*chat.Message),
	}
}

// seedConversation installs an active conversation and returns its id.
func (f *fakeChatRepo) seedConversation(userA, userB string, itemType chat.ItemType, itemID string) string {
	c, err := chat.NewConversation(userA, userB, itemType, itemID)
	if err != nil {
		panic(err)
	}
	id, _, err := f.CreateConversation(context.Background(), *c)
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fakeChatRepo) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%04d", f.nextID)
}

func pairKey(a, b string, itemType chat.ItemType, itemID string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b + "|" + string(itemType) + "|" + itemID
}

func copyConversation(c *chat.Conversation) *chat.Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	if c.LastMessageID != nil {
		id := *c.LastMessageID
		out.LastMessageID = &id
	}
	return &out
}

func copyMessage(m *chat.Message) *chat.Message {
	out := *m
	out.ReadBy = append([]string(nil), m.ReadBy...)
	return &out
}

func (f *fakeChatRepo) CreateConversation(_ context.Context, c chat.Conversation) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", false, f.failWith
	}

	key := pairKey(c.Participants[0], c.Participants[1], c.ItemType, c.ItemID)
	for id, existing := range f.conversations {
		if existing.IsActive && pairKey(existing.Participants[0], existing.Participants[1], existing.ItemType, existing.ItemID) == key {
			return id, false, nil
		}
	}

	stored := copyConversation(&c)
	stored.ID = f.genID()
	f.conversations[stored.ID] = stored
	return stored.ID, true, nil
}

func (f *fakeChatRepo) FindConversation(_ context.Context, id string) (*chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.conversations[id]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	return copyConversation(c), nil
}

func (f *fakeChatRepo) FindConversationByKey(_ context.Context, userA, userB string, itemType chat.ItemType, itemID string) (*chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	key := pairKey(userA, userB, itemType, itemID)
	for _, c := range f.conversations {
		if c.IsActive && pairKey(c.Participants[0], c.Participants[1], c.ItemType, c.ItemID) == key {
			return copyConversation(c), nil
		}
	}
	return nil, chat.ErrConversationNotFound
}

func (f *fakeChatRepo) ListConversationsForUser(_ context.Context, userID string) ([]repository.ConversationWithLast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	var out []repository.ConversationWithLast
	for _, c := range f.conversations {
		if !c.IsActive || !c.HasParticipant(userID) {
			continue
		}
		item := repository.ConversationWithLast{Conversation: *copyConversation(c)}
		if msgs := f.messages[c.ID]; len(msgs) > 0 {
			item.LastMessage = copyMessage(msgs[len(msgs)-1])
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Conversation.UpdatedAt.After(out[j].Conversation.UpdatedAt)
	})
	return out, nil
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m chat.Message) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	conv, ok := f.conversations[m.ConversationID]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}

	stored := copyMessage(&m)
	stored.ID = f.genID()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	f.messages[m.ConversationID] = append(f.messages[m.ConversationID], stored)

	conv.LastMessageID = &stored.ID
	conv.UpdatedAt = stored.CreatedAt
	for _, id := range conv.Participants {
		if id != m.SenderID {
			conv.UnreadCount[id]++
		}
	}
	return copyMessage(stored), nil
}

func (f *fakeChatRepo) ListMessages(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	var visible []*chat.Message
	msgs := f.messages[conversationID]
	for i := len(msgs) - 1; i >= 0; i-- { // newest first
		if !msgs[i].IsDeleted {
			visible = append(visible, msgs[i])
		}
	}

	if offset >= len(visible) {
		return nil, nil
	}
	end := offset + limit
	if end > len(visible) {
		end = len(visible)
	}

	out := make([]chat.Message, 0, end-offset)
	for _, m := range visible[offset:end] {
		out = append(out, *copyMessage(m))
	}
	return out, nil
}

func (f *fakeChatRepo) CountMessages(_ context.Context, conversationID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	n := 0
	for _, m := range f.messages[conversationID] {
		if !m.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeChatRepo) MarkMessagesRead(_ context.Context, conversationID, readerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}

	newlyRead := 0
	for _, m := range f.messages[conversationID] {
		if m.IsDeleted || m.SenderID == readerID || m.ReadByUser(readerID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, readerID)
		newlyRead++
	}
	if conv, ok := f.conversations[conversationID]; ok {
		conv.UnreadCount[readerID] = 0
	}
	return newlyRead, nil
}

func (f *fakeChatRepo) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	c, ok := f.conversations[conversationID]
	if !ok {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}
