// Package service holds the messaging and notification cores: the
// validation, ordering and permission rules that sit between the HTTP /
// WebSocket boundaries and the Postgres repositories.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

// MessageStore is the durable message record. Implemented by
// repository.MessageRepository.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	History(ctx context.Context, a, b string, limit int, beforeID string) ([]model.Message, error)
	MarkRead(ctx context.Context, ids []string, reader string) ([]model.ReadReceipt, error)
	MarkDelivered(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error)
	DeleteConversation(ctx context.Context, a, b string) (int64, error)
}

// Broker routes ephemeral events to live connections. Implemented by
// ws.Hub. Broker failures never surface to callers: the durable fact is
// already in the store by the time anything is published.
type Broker interface {
	PublishMessage(m *model.Message)
	PublishReceipts(receipts []model.ReadReceipt, readerID string)
	PublishNotification(n *model.Notification)
	IsOnline(userID string) bool
}

// Messaging implements sending, reading, deleting and aggregating
// point-to-point messages.
type Messaging struct {
	store    MessageStore
	broker   Broker
	notifier *Notifier
}

func NewMessaging(store MessageStore, broker Broker, notifier *Notifier) *Messaging {
	return &Messaging{store: store, broker: broker, notifier: notifier}
}

// Send validates and persists a message, then publishes it. Persistence
// strictly happens-before the broker emit: when the live event reaches
// the recipient, history already contains the row, and a failed insert
// suppresses the emit entirely.
func (s *Messaging) Send(ctx context.Context, sender, recipient model.Participant, text string) (*model.Message, error) {
	defer logger.DeferLogDuration("chat.Send", time.Now())()
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, apperr.Validationf("message text is empty")
	case recipient.IsZero():
		return nil, apperr.Validationf("recipient is required")
	case sender.IsZero():
		return nil, apperr.Validationf("sender is required")
	case sender.ID == recipient.ID:
		return nil, apperr.Validationf("cannot message yourself")
	}
	if _, err := model.ParseKind(string(recipient.Kind)); err != nil {
		return nil, apperr.Validationf("unknown recipient kind %q", recipient.Kind)
	}

	m := &model.Message{
		ID:            uuid.New().String(),
		SenderID:      sender.ID,
		SenderKind:    sender.Kind,
		RecipientID:   recipient.ID,
		RecipientKind: recipient.Kind,
		Text:          text,
		Status:        model.MessageStatusSent,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	s.broker.PublishMessage(m)

	// Opportunistic delivered upgrade: the recipient has a live
	// connection, so the event was just queued to it. Monotonic in SQL,
	// never downgrades a read message.
	if s.broker.IsOnline(recipient.ID) {
		if err := s.store.MarkDelivered(ctx, m.ID); err != nil {
			logger.Errorf("chat mark delivered id=%s: %v", m.ID, err)
		} else {
			m.Status = model.MessageStatusDelivered
		}
	}

	// The feed entry is best-effort relative to the send: the message is
	// already durable, so a notification insert failure is only logged.
	if s.notifier != nil {
		if _, err := s.notifier.Notify(ctx, recipient, model.NotificationMessage, preview(text), &sender); err != nil {
			logger.Errorf("chat notify recipient=%s: %v", recipient.ID, err)
		}
	}
	return m, nil
}

// preview shortens a message body for the notification feed. The cut
// never lands inside a multibyte rune, so the stored text stays valid
// UTF-8 regardless of alphabet.
func preview(text string) string {
	const maxLen = 120
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// History returns the messages between requester and counterpart,
// oldest first, restartable via beforeID.
func (s *Messaging) History(ctx context.Context, requester, counterpartID string, limit int, beforeID string) ([]model.Message, error) {
	if counterpartID == "" {
		return nil, apperr.Validationf("counterpart is required")
	}
	return s.store.History(ctx, requester, counterpartID, limit, beforeID)
}

// MarkRead flips messages addressed to reader to read and pushes read
// receipts to the original senders. Ids owned by others are silently
// skipped by the store.
func (s *Messaging) MarkRead(ctx context.Context, ids []string, reader string) error {
	receipts, err := s.store.MarkRead(ctx, ids, reader)
	if err != nil {
		return err
	}
	if len(receipts) > 0 {
		s.broker.PublishReceipts(receipts, reader)
	}
	return nil
}

// Delete hard-removes a single message. Only the sender may delete;
// anyone else gets a PermissionError and the row is left untouched.
func (s *Messaging) Delete(ctx context.Context, id, requester string) error {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != requester {
		return apperr.Permissionf("only the sender may delete a message")
	}
	return s.store.Delete(ctx, id)
}

// ListConversations derives the requester's sidebar from the store.
func (s *Messaging) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	return s.store.ListConversations(ctx, userID)
}

// DeleteConversation removes the whole thread between the pair, both
// directions, for both parties.
func (s *Messaging) DeleteConversation(ctx context.Context, userID, counterpartID string) error {
	if counterpartID == "" {
		return apperr.Validationf("counterpart is required")
	}
	_, err := s.store.DeleteConversation(ctx, userID, counterpartID)
	return err
}
