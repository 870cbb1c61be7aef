package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

// fakeMessageStore records calls into a shared event log so ordering
// against the broker can be asserted.
type fakeMessageStore struct {
	log       *[]string
	messages  map[string]*model.Message
	insertErr error
	delivered []string
	deleted   []string
	receipts  []model.ReadReceipt
}

func newFakeMessageStore(log *[]string) *fakeMessageStore {
	return &fakeMessageStore{log: log, messages: map[string]*model.Message{}}
}

func (f *fakeMessageStore) Insert(ctx context.Context, m *model.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	*f.log = append(*f.log, "insert")
	cp := *m
	f.messages[m.ID] = &cp
	return nil
}

func (f *fakeMessageStore) GetByID(ctx context.Context, id string) (*model.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

func (f *fakeMessageStore) History(ctx context.Context, a, b string, limit int, beforeID string) ([]model.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) MarkRead(ctx context.Context, ids []string, reader string) ([]model.ReadReceipt, error) {
	*f.log = append(*f.log, "mark_read")
	return f.receipts, nil
}

func (f *fakeMessageStore) MarkDelivered(ctx context.Context, id string) error {
	f.delivered = append(f.delivered, id)
	return nil
}

func (f *fakeMessageStore) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeMessageStore) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	return nil, nil
}

func (f *fakeMessageStore) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	*f.log = append(*f.log, "delete_conversation")
	return 0, nil
}

type fakeBroker struct {
	log           *[]string
	online        map[string]bool
	messages      []*model.Message
	receipts      [][]model.ReadReceipt
	notifications []*model.Notification
}

func newFakeBroker(log *[]string) *fakeBroker {
	return &fakeBroker{log: log, online: map[string]bool{}}
}

func (f *fakeBroker) PublishMessage(m *model.Message) {
	*f.log = append(*f.log, "publish_message")
	f.messages = append(f.messages, m)
}

func (f *fakeBroker) PublishReceipts(receipts []model.ReadReceipt, readerID string) {
	*f.log = append(*f.log, "publish_receipts")
	f.receipts = append(f.receipts, receipts)
}

func (f *fakeBroker) PublishNotification(n *model.Notification) {
	*f.log = append(*f.log, "publish_notification")
	f.notifications = append(f.notifications, n)
}

func (f *fakeBroker) IsOnline(userID string) bool { return f.online[userID] }

var (
	alice = model.Participant{ID: "alice", Kind: model.KindClient}
	bob   = model.Participant{ID: "bob", Kind: model.KindVendor}
)

func newTestMessaging(log *[]string) (*Messaging, *fakeMessageStore, *fakeBroker) {
	store := newFakeMessageStore(log)
	broker := newFakeBroker(log)
	return NewMessaging(store, broker, nil), store, broker
}

func TestSend_PersistsBeforePublish(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, _, broker := newTestMessaging(&log)

	m, err := chat.Send(context.Background(), alice, bob, "hello")

	req.NoError(err)
	req.NotEmpty(m.ID)
	req.Equal([]string{"insert", "publish_message"}, log)
	req.Len(broker.messages, 1)
	req.Equal(m.ID, broker.messages[0].ID)
}

func TestSend_Validation(t *testing.T) {
	var log []string
	chat, _, _ := newTestMessaging(&log)

	cases := []struct {
		name      string
		sender    model.Participant
		recipient model.Participant
		text      string
	}{
		{"empty text", alice, bob, "   "},
		{"missing recipient", alice, model.Participant{}, "hi"},
		{"missing sender", model.Participant{}, bob, "hi"},
		{"self message", alice, alice, "hi"},
		{"unknown recipient kind", alice, model.Participant{ID: "x", Kind: "admin"}, "hi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			_, err := chat.Send(context.Background(), tc.sender, tc.recipient, tc.text)
			req.Error(err)
			var ve *apperr.ValidationError
			req.ErrorAs(err, &ve)
			// Nothing reached the store or the broker.
			req.Empty(log)
		})
	}
}

func TestSend_InsertFailureSuppressesPublish(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, store, broker := newTestMessaging(&log)
	store.insertErr = errors.New("db down")

	_, err := chat.Send(context.Background(), alice, bob, "hello")

	req.Error(err)
	req.Empty(broker.messages)
	req.Empty(log)
}

func TestSend_DeliveredUpgradeWhenRecipientOnline(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, store, broker := newTestMessaging(&log)
	broker.online[bob.ID] = true

	m, err := chat.Send(context.Background(), alice, bob, "hello")

	req.NoError(err)
	req.Equal(model.MessageStatusDelivered, m.Status)
	req.Equal([]string{m.ID}, store.delivered)
}

func TestSend_StaysSentWhenRecipientOffline(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, store, _ := newTestMessaging(&log)

	m, err := chat.Send(context.Background(), alice, bob, "hello")

	req.NoError(err)
	req.Equal(model.MessageStatusSent, m.Status)
	req.Empty(store.delivered)
}

func TestSend_FeedsNotificationWithPreview(t *testing.T) {
	req := require.New(t)
	var log []string
	msgStore := newFakeMessageStore(&log)
	broker := newFakeBroker(&log)
	notifStore := newFakeNotificationStore(&log)
	notifier := NewNotifier(notifStore, broker, nil)
	chat := NewMessaging(msgStore, broker, notifier)

	long := strings.Repeat("x", 300)
	_, err := chat.Send(context.Background(), alice, bob, long)

	req.NoError(err)
	req.Len(notifStore.inserted, 1)
	n := notifStore.inserted[0]
	req.Equal(model.NotificationMessage, n.Type)
	req.Equal(bob.ID, n.RecipientID)
	req.NotNil(n.SenderID)
	req.Equal(alice.ID, *n.SenderID)
	req.Len(n.Text, 120)
	req.True(strings.HasSuffix(n.Text, "..."))
}

func TestPreview_NeverSplitsRunes(t *testing.T) {
	req := require.New(t)

	cases := []struct {
		name string
		text string
	}{
		{"short untouched", "привет"},
		{"ascii at the limit", strings.Repeat("x", 120)},
		{"long ascii", strings.Repeat("x", 500)},
		{"long cyrillic", strings.Repeat("п", 200)},
		{"long accented", strings.Repeat("é", 118)},
		{"long cjk", strings.Repeat("事", 100)},
		{"mixed near the cut", strings.Repeat("a", 116) + "ééééé"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := preview(tc.text)
			req.True(utf8.ValidString(got), "preview produced invalid UTF-8: %q", got)
			req.LessOrEqual(len(got), 120)
			if len(tc.text) <= 120 {
				req.Equal(tc.text, got)
			} else {
				req.True(strings.HasSuffix(got, "..."))
			}
		})
	}
}

func TestMarkRead_PublishesReceipts(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, store, broker := newTestMessaging(&log)
	store.receipts = []model.ReadReceipt{{MessageID: "m1", SenderID: alice.ID}}

	err := chat.MarkRead(context.Background(), []string{"m1"}, bob.ID)

	req.NoError(err)
	req.Equal([]string{"mark_read", "publish_receipts"}, log)
	req.Len(broker.receipts, 1)
}

func TestMarkRead_NoReceiptsNoPublish(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, _, broker := newTestMessaging(&log)

	// Ids owned by someone else produce an empty receipt set.
	err := chat.MarkRead(context.Background(), []string{"not-mine"}, bob.ID)

	req.NoError(err)
	req.Empty(broker.receipts)
}

func TestDelete_OnlySenderMayDelete(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, store, _ := newTestMessaging(&log)
	m, err := chat.Send(context.Background(), alice, bob, "hello")
	req.NoError(err)

	err = chat.Delete(context.Background(), m.ID, bob.ID)

	var pe *apperr.PermissionError
	req.ErrorAs(err, &pe)
	req.Empty(store.deleted)

	// The sender succeeds.
	req.NoError(chat.Delete(context.Background(), m.ID, alice.ID))
	req.Equal([]string{m.ID}, store.deleted)
}

func TestDelete_UnknownMessage(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, _, _ := newTestMessaging(&log)

	err := chat.Delete(context.Background(), "nope", alice.ID)

	req.ErrorIs(err, apperr.ErrNotFound)
}

func TestDeleteConversation_RequiresCounterpart(t *testing.T) {
	req := require.New(t)
	var log []string
	chat, _, _ := newTestMessaging(&log)

	err := chat.DeleteConversation(context.Background(), alice.ID, "")

	var ve *apperr.ValidationError
	req.ErrorAs(err, &ve)
	req.Empty(log)
}
