package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/domain"
	repository "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists conversations and messages in Postgres.
// Participant pairs are stored in canonical order (user_a < user_b) so the
// unique index on (user_a, user_b, item_type, item_id) enforces at most one
// conversation per unordered pair and listing.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func orderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func (r *PgChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) (string, bool, error) {
	if r == nil || r.pool == nil {
		return "", false, errors.New("PgChatRepository: nil pool")
	}
	if len(c.Participants) != 2 {
		return "", false, chat.ErrSameParticipant
	}
	userA, userB := orderPair(c.Participants[0], c.Participants[1])

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback(ctx)

	var id string
	created := true
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.conversation (user_a, user_b, item_type, item_id, is_active, created_at, updated_at)
		VALUES ($1::uuid, $2::uuid, $3, $4::uuid, true, $5, $5)
		ON CONFLICT (user_a, user_b, item_type, item_id) DO NOTHING
		RETURNING id::text
	`, userA, userB, string(c.ItemType), c.ItemID, c.CreatedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race or the thread already exists; reuse it.
		created = false
		err = tx.QueryRow(ctx, `
			SELECT id::text FROM chat.conversation
			WHERE user_a = $1::uuid AND user_b = $2::uuid AND item_type = $3 AND item_id = $4::uuid
		`, userA, userB, string(c.ItemType), c.ItemID).Scan(&id)
	}
	if err != nil {
		return "", false, err
	}

	if created {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, unread_count)
			VALUES ($1::uuid, $2::uuid, 0), ($1::uuid, $3::uuid, 0)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, id, userA, userB)
		if err != nil {
			return "", false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, err
	}
	return id, created, nil
}

func (r *PgChatRepository) FindConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	conv, err := r.scanConversation(r.pool.QueryRow(ctx, `
		SELECT id::text, user_a::text, user_b::text, item_type, item_id::text,
		       last_message::text, is_active, created_at, updated_at
		FROM chat.conversation
		WHERE id = $1::uuid
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadCounters(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *PgChatRepository) FindConversationByKey(ctx context.Context, userA, userB string, itemType chat.ItemType, itemID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	a, b := orderPair(userA, userB)
	conv, err := r.scanConversation(r.pool.QueryRow(ctx, `
		SELECT id::text, user_a::text, user_b::text, item_type, item_id::text,
		       last_message::text, is_active, created_at, updated_at
		FROM chat.conversation
		WHERE user_a = $1::uuid AND user_b = $2::uuid AND item_type = $3 AND item_id = $4::uuid
	`, a, b, string(itemType), itemID))
	if err != nil {
		return nil, err
	}
	if err := r.loadCounters(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]repository.ConversationWithLast, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.user_a::text, c.user_b::text, c.item_type, c.item_id::text,
		       c.last_message::text, c.is_active, c.created_at, c.updated_at,
		       m.id::text, m.sender_id::text, m.content, m.read_by::text[], m.is_deleted, m.created_at
		FROM chat.conversation c
		LEFT JOIN chat.message m ON m.id = c.last_message
		WHERE (c.user_a = $1::uuid OR c.user_b = $1::uuid) AND c.is_active
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []repository.ConversationWithLast
		ids []string
	)
	for rows.Next() {
		var (
			conv      chat.Conversation
			userA     string
			userB     string
			itemType  string
			lastID    *string
			msgID     *string
			msgSender *string
			msgBody   *string
			msgReadBy []string
			msgDel    *bool
			msgAt     *time.Time
		)
		if err := rows.Scan(&conv.ID, &userA, &userB, &itemType, &conv.ItemID,
			&lastID, &conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt,
			&msgID, &msgSender, &msgBody, &msgReadBy, &msgDel, &msgAt); err != nil {
			return nil, err
		}
		conv.ItemType = chat.ItemType(itemType)
		conv.Participants = []string{userA, userB}
		conv.LastMessageID = lastID
		conv.UnreadCount = make(map[string]int, 2)

		entry := repository.ConversationWithLast{Conversation: conv}
		if msgID != nil {
			entry.LastMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: conv.ID,
				SenderID:       *msgSender,
				Content:        *msgBody,
				ReadBy:         msgReadBy,
				IsDeleted:      *msgDel,
				CreatedAt:      *msgAt,
			}
		}
		out = append(out, entry)
		ids = append(ids, conv.ID)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(out) == 0 {
		return out, nil
	}

	counters, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, user_id::text, unread_count
		FROM chat.participant
		WHERE conversation_id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, err
	}
	defer counters.Close()

	byID := make(map[string]*repository.ConversationWithLast, len(out))
	for i := range out {
		byID[out[i].Conversation.ID] = &out[i]
	}
	for counters.Next() {
		var convID, uid string
		var n int
		if err := counters.Scan(&convID, &uid, &n); err != nil {
			return nil, err
		}
		if entry, ok := byID[convID]; ok {
			entry.Conversation.UnreadCount[uid] = n
		}
	}
	return out, counters.Err()
}

// SaveMessage inserts the message and applies the conversation rollup in one
// transaction: last_message points at the new row and every participant other
// than the sender gets unread_count bumped by one at the store level.
func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, read_by, is_deleted, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4::uuid[], false, $5)
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.Content, m.ReadBy, m.CreatedAt).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message = $2::uuid, updated_at = now()
		WHERE id = $1::uuid
	`, m.ConversationID, m.ID)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, chat.ErrConversationNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat.participant
		SET unread_count = unread_count + 1
		WHERE conversation_id = $1::uuid AND user_id <> $2::uuid
	`, m.ConversationID, m.SenderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, read_by::text[], is_deleted, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid AND NOT is_deleted
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ReadBy, &m.IsDeleted, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) CountMessages(ctx context.Context, conversationID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM chat.message
		WHERE conversation_id = $1::uuid AND NOT is_deleted
	`, conversationID).Scan(&n)
	return n, err
}

// MarkMessagesRead unions the reader into read_by on every message they have
// not yet read and zeroes their unread counter, committing both together.
// The guard on read_by keeps the flip idempotent.
func (r *PgChatRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE chat.message
		SET read_by = read_by || $2::uuid
		WHERE conversation_id = $1::uuid
		  AND sender_id <> $2::uuid
		  AND NOT (read_by @> ARRAY[$2]::uuid[])
		  AND NOT is_deleted
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat.participant
		SET unread_count = 0
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) scanConversation(row pgx.Row) (*chat.Conversation, error) {
	var (
		conv     chat.Conversation
		userA    string
		userB    string
		itemType string
	)
	err := row.Scan(&conv.ID, &userA, &userB, &itemType, &conv.ItemID,
		&conv.LastMessageID, &conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	conv.ItemType = chat.ItemType(itemType)
	conv.Participants = []string{userA, userB}
	conv.UnreadCount = make(map[string]int, 2)
	return &conv, nil
}

func (r *PgChatRepository) loadCounters(ctx context.Context, conv *chat.Conversation) error {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id::text, unread_count
		FROM chat.participant
		WHERE conversation_id = $1::uuid
	`, conv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		var n int
		if err := rows.Scan(&uid, &n); err != nil {
			return err
		}
		conv.UnreadCount[uid] = n
	}
	return rows.Err()
}
