package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

// NotificationStore is the durable feed. Implemented by
// repository.NotificationRepository.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, requester string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// PushNotifier delivers web pushes for offline recipients. nil disables
// pushes. Implemented by push.Client.
type PushNotifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string)
}

// Notifier implements the notification feed: persisted, typed events
// with read tracking, plus a best-effort live badge via the broker and
// a web push fallback when the recipient is offline.
type Notifier struct {
	store  NotificationStore
	broker Broker
	push   PushNotifier
}

func NewNotifier(store NotificationStore, broker Broker, push PushNotifier) *Notifier {
	return &Notifier{store: store, broker: broker, push: push}
}

// Notify persists a notification and then attempts the live emit. Like
// message sends, persistence happens-before emission and a store
// failure suppresses every downstream effect. An offline recipient
// still finds the notification on the next List.
func (s *Notifier) Notify(ctx context.Context, recipient model.Participant, typ model.NotificationType, text string, sender *model.Participant) (*model.Notification, error) {
	defer logger.DeferLogDuration("notify.Notify", time.Now())()
	if recipient.IsZero() {
		return nil, apperr.Validationf("recipient is required")
	}
	if _, err := model.ParseNotificationType(string(typ)); err != nil {
		return nil, apperr.Validationf("unknown notification type %q", typ)
	}

	n := &model.Notification{
		ID:            uuid.New().String(),
		RecipientID:   recipient.ID,
		RecipientKind: recipient.Kind,
		Type:          typ,
		Text:          text,
		IsRead:        false,
		CreatedAt:     time.Now().UTC(),
	}
	if sender != nil && !sender.IsZero() {
		n.SenderID = &sender.ID
		n.SenderKind = &sender.Kind
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}

	s.broker.PublishNotification(n)

	if s.push != nil && !s.broker.IsOnline(recipient.ID) {
		data := map[string]string{"notification_id": n.ID, "type": string(n.Type)}
		go s.push.Notify(context.Background(), recipient.ID, pushTitle(typ), text, data)
	}
	return n, nil
}

func pushTitle(typ model.NotificationType) string {
	switch typ {
	case model.NotificationMessage:
		return "New message"
	case model.NotificationConsultation:
		return "Consultation update"
	case model.NotificationBooking:
		return "Booking update"
	default:
		return "Notification"
	}
}

// List returns the user's feed, newest first.
func (s *Notifier) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return s.store.ListByRecipient(ctx, userID, limit)
}

// MarkRead marks one notification read. A requester that does not own
// the notification, or a notification already read, results in a silent
// no-op, not an error.
func (s *Notifier) MarkRead(ctx context.Context, id, requester string) error {
	_, err := s.store.MarkRead(ctx, id, requester)
	return err
}

// MarkAllRead flips the user's whole unread set atomically.
func (s *Notifier) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.store.MarkAllRead(ctx, userID)
	return err
}

// UnreadCount is derived on demand from the store.
func (s *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}
