package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, sender_id, sender_kind, recipient_id, recipient_kind, body, status, created_at`

func scanMessage(row pgx.Row) (*model.Message, error) {
	m := &model.Message{}
	err := row.Scan(&m.ID, &m.SenderID, &m.SenderKind, &m.RecipientID, &m.RecipientKind,
		&m.Text, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) Insert(ctx context.Context, m *model.Message) error {
	defer logger.DeferLogDuration("msg.Insert", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_id, sender_kind, recipient_id, recipient_kind, body, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SenderID, m.SenderKind, m.RecipientID, m.RecipientKind, m.Text, m.Status, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("msgRepo.Insert: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	defer logger.DeferLogDuration("msg.GetByID", time.Now())()
	m, err := scanMessage(r.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetByID: %w", err)
	}
	return m, nil
}

// History returns messages between the unordered pair (a, b) in
// chronological order, oldest first. A non-empty beforeID restarts the
// scan strictly before that message (keyset pagination going back in
// time); limit bounds the page size. A cursor naming no existing
// message is ErrNotFound, never an empty page.
func (r *MessageRepository) History(ctx context.Context, a, b string, limit int, beforeID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.History", time.Now())()
	if limit <= 0 {
		limit = 50
	}

	sql := `SELECT ` + messageColumns + `
	 FROM messages
	 WHERE ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))`
	args := []any{a, b}
	if beforeID != "" {
		var beforeAt time.Time
		err := r.pool.QueryRow(ctx,
			`SELECT created_at FROM messages WHERE id = $1`, beforeID).Scan(&beforeAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("msgRepo.History cursor: %w", err)
		}
		sql += ` AND (created_at, id) < ($3, $4)`
		args = append(args, beforeAt, beforeID)
	}
	args = append(args, limit)
	sql += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.History query: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("msgRepo.History scan: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.History rows: %w", err)
	}

	// Fetched newest-first for the keyset; callers get oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead flips the given messages to read, but only rows addressed to
// reader. Rows owned by others are silently skipped, so a client can
// never mark someone else's inbound mail as read. Returns a receipt per
// actually-updated row.
func (r *MessageRepository) MarkRead(ctx context.Context, ids []string, reader string) ([]model.ReadReceipt, error) {
	defer logger.DeferLogDuration("msg.MarkRead", time.Now())()
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`UPDATE messages SET status = 'read'
		 WHERE id = ANY($1) AND recipient_id = $2 AND status <> 'read'
		 RETURNING id, sender_id`,
		ids, reader,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.MarkRead: %w", err)
	}
	defer rows.Close()

	receipts := make([]model.ReadReceipt, 0, len(ids))
	for rows.Next() {
		var rr model.ReadReceipt
		if err := rows.Scan(&rr.MessageID, &rr.SenderID); err != nil {
			return nil, fmt.Errorf("msgRepo.MarkRead scan: %w", err)
		}
		receipts = append(receipts, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.MarkRead rows: %w", err)
	}
	return receipts, nil
}

// MarkDelivered upgrades a message from sent to delivered. Monotonic: a
// message that is already delivered or read is left untouched.
func (r *MessageRepository) MarkDelivered(ctx context.Context, id string) error {
	defer logger.DeferLogDuration("msg.MarkDelivered", time.Now())()
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET status = 'delivered' WHERE id = $1 AND status = 'sent'`, id,
	)
	if err != nil {
		return fmt.Errorf("msgRepo.MarkDelivered: %w", err)
	}
	return nil
}

// Delete hard-removes a message. Ownership is checked by the caller.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	defer logger.DeferLogDuration("msg.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("msgRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListConversations derives the sidebar view for userID: one row per
// distinct counterpart, latest message first, with the unread count
// (messages addressed to userID that are not yet read). Computed from
// the messages table on every call; nothing here is cached.
func (r *MessageRepository) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	defer logger.DeferLogDuration("msg.ListConversations", time.Now())()
	rows, err := r.pool.Query(ctx,
		`WITH sides AS (
		   SELECT
		     CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS counterpart_id,
		     CASE WHEN sender_id = $1 THEN recipient_kind ELSE sender_kind END AS counterpart_kind,
		     body, created_at, id,
		     CASE WHEN recipient_id = $1 AND status <> 'read' THEN 1 ELSE 0 END AS unread
		   FROM messages
		   WHERE sender_id = $1 OR recipient_id = $1
		 )
		 SELECT counterpart_id, counterpart_kind, body, created_at, unread_count FROM (
		   SELECT DISTINCT ON (counterpart_id)
		     counterpart_id, counterpart_kind, body, created_at,
		     SUM(unread) OVER (PARTITION BY counterpart_id) AS unread_count
		   FROM sides
		   ORDER BY counterpart_id, created_at DESC, id DESC
		 ) latest
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.ListConversations query: %w", err)
	}
	defer rows.Close()

	convs := make([]model.ConversationSummary, 0, 16)
	for rows.Next() {
		var c model.ConversationSummary
		if err := rows.Scan(&c.CounterpartID, &c.CounterpartKind, &c.LastMessageText, &c.LastMessageAt, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("msgRepo.ListConversations scan: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.ListConversations rows: %w", err)
	}
	return convs, nil
}

// DeleteConversation hard-removes every message between the pair, both
// directions. Returns the number of rows removed.
func (r *MessageRepository) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	defer logger.DeferLogDuration("msg.DeleteConversation", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM messages
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)`,
		a, b,
	)
	if err != nil {
		return 0, fmt.Errorf("msgRepo.DeleteConversation: %w", err)
	}
	return tag.RowsAffected(), nil
}
