package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	defer logger.DeferLogDuration("notif.Insert", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient_id, recipient_kind, sender_id, sender_kind, type, body, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.RecipientID, n.RecipientKind, n.SenderID, n.SenderKind, n.Type, n.Text, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notifRepo.Insert: %w", err)
	}
	return nil
}

// ListByRecipient returns the user's feed, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	defer logger.DeferLogDuration("notif.ListByRecipient", time.Now())()
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, recipient_id, recipient_kind, sender_id, sender_kind, type, body, is_read, created_at
		 FROM notifications
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("notifRepo.ListByRecipient query: %w", err)
	}
	defer rows.Close()

	list := make([]model.Notification, 0, limit)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.RecipientKind, &n.SenderID, &n.SenderKind,
			&n.Type, &n.Text, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notifRepo.ListByRecipient scan: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notifRepo.ListByRecipient rows: %w", err)
	}
	return list, nil
}

// MarkRead sets is_read for one notification, only when it belongs to
// requester. Marking someone else's notification, or one already read,
// is a silent no-op (false, nil).
func (r *NotificationRepository) MarkRead(ctx context.Context, id, requester string) (bool, error) {
	defer logger.DeferLogDuration("notif.MarkRead", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = true
		 WHERE id = $1 AND recipient_id = $2 AND is_read = false`,
		id, requester,
	)
	if err != nil {
		return false, fmt.Errorf("notifRepo.MarkRead: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead flips every unread notification of the user in a single
// statement, so callers never observe a partial application.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	defer logger.DeferLogDuration("notif.MarkAllRead", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE recipient_id = $1 AND is_read = false`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("notifRepo.MarkAllRead: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnreadCount is recomputed on demand, never cached across requests.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	defer logger.DeferLogDuration("notif.UnreadCount", time.Now())()
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("notifRepo.UnreadCount: %w", err)
	}
	return n, nil
}
