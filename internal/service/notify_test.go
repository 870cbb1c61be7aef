package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

type fakeNotificationStore struct {
	log       *[]string
	inserted  []*model.Notification
	insertErr error
	markedAll []string
	unread    int
}

func newFakeNotificationStore(log *[]string) *fakeNotificationStore {
	return &fakeNotificationStore{log: log}
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	*f.log = append(*f.log, "insert_notification")
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeNotificationStore) ListByRecipient(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, requester string) (bool, error) {
	// Ownership mismatch or already read: flipped=false, no error.
	return false, nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	f.markedAll = append(f.markedAll, userID)
	return 0, nil
}

func (f *fakeNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	return f.unread, nil
}

type fakePush struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newFakePush() *fakePush {
	return &fakePush{done: make(chan struct{}, 1)}
}

func (f *fakePush) Notify(ctx context.Context, userID, title, body string, data map[string]string) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	select {
	case f.done <- struct{}{}:
	default:
	}
}

func (f *fakePush) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNotify_PersistsBeforePublish(t *testing.T) {
	req := require.New(t)
	var log []string
	store := newFakeNotificationStore(&log)
	broker := newFakeBroker(&log)
	notifier := NewNotifier(store, broker, nil)

	n, err := notifier.Notify(context.Background(), bob, model.NotificationBooking, "booking confirmed", nil)

	req.NoError(err)
	req.Equal([]string{"insert_notification", "publish_notification"}, log)
	req.Len(broker.notifications, 1)
	req.Equal(n.ID, broker.notifications[0].ID)
	req.Nil(n.SenderID)
	req.False(n.IsRead)
}

func TestNotify_RejectsUnknownType(t *testing.T) {
	req := require.New(t)
	var log []string
	notifier := NewNotifier(newFakeNotificationStore(&log), newFakeBroker(&log), nil)

	_, err := notifier.Notify(context.Background(), bob, "marketing", "spam", nil)

	var ve *apperr.ValidationError
	req.ErrorAs(err, &ve)
	req.Empty(log)
}

func TestNotify_StoreFailureSuppressesPublish(t *testing.T) {
	req := require.New(t)
	var log []string
	store := newFakeNotificationStore(&log)
	store.insertErr = errors.New("db down")
	broker := newFakeBroker(&log)
	notifier := NewNotifier(store, broker, nil)

	_, err := notifier.Notify(context.Background(), bob, model.NotificationSystem, "hi", nil)

	req.Error(err)
	req.Empty(broker.notifications)
}

func TestNotify_PushOnlyWhenOffline(t *testing.T) {
	req := require.New(t)
	var log []string
	broker := newFakeBroker(&log)
	pushed := newFakePush()
	notifier := NewNotifier(newFakeNotificationStore(&log), broker, pushed)

	// Given the recipient is offline
	_, err := notifier.Notify(context.Background(), bob, model.NotificationConsultation, "new slot", nil)
	req.NoError(err)

	// Then the push fires
	select {
	case <-pushed.done:
	case <-time.After(time.Second):
		req.Fail("push was not sent for offline recipient")
	}
	req.Equal(1, pushed.count())

	// Given the recipient is online
	broker.online[bob.ID] = true
	_, err = notifier.Notify(context.Background(), bob, model.NotificationConsultation, "another slot", nil)
	req.NoError(err)

	// Then no second push arrives
	select {
	case <-pushed.done:
		req.Fail("push sent despite live connection")
	case <-time.After(50 * time.Millisecond):
	}
	req.Equal(1, pushed.count())
}

func TestNotify_AttachesSender(t *testing.T) {
	req := require.New(t)
	var log []string
	store := newFakeNotificationStore(&log)
	notifier := NewNotifier(store, newFakeBroker(&log), nil)

	n, err := notifier.Notify(context.Background(), bob, model.NotificationMessage, "hello", &alice)

	req.NoError(err)
	req.NotNil(n.SenderID)
	req.Equal(alice.ID, *n.SenderID)
	req.Equal(alice.Kind, *n.SenderKind)
}

func TestMarkRead_SilentNoOpOnForeignNotification(t *testing.T) {
	req := require.New(t)
	var log []string
	notifier := NewNotifier(newFakeNotificationStore(&log), newFakeBroker(&log), nil)

	// The store reports nothing flipped; the caller still sees success.
	req.NoError(notifier.MarkRead(context.Background(), "someone-elses", bob.ID))
}
