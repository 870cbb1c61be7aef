package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/middleware"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/service"
)

// stubStore holds one canned message and records nothing else; enough
// to drive the HTTP status mapping.
type stubStore struct {
	message *model.Message
}

func (s *stubStore) Insert(ctx context.Context, m *model.Message) error { return nil }

func (s *stubStore) GetByID(ctx context.Context, id string) (*model.Message, error) {
	if s.message != nil && s.message.ID == id {
		return s.message, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubStore) History(ctx context.Context, a, b string, limit int, beforeID string) ([]model.Message, error) {
	return nil, nil
}

func (s *stubStore) MarkRead(ctx context.Context, ids []string, reader string) ([]model.ReadReceipt, error) {
	return nil, nil
}

func (s *stubStore) MarkDelivered(ctx context.Context, id string) error { return nil }
func (s *stubStore) Delete(ctx context.Context, id string) error        { return nil }

func (s *stubStore) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	return nil, nil
}

func (s *stubStore) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	return 0, nil
}

type stubBroker struct{}

func (stubBroker) PublishMessage(m *model.Message)                             {}
func (stubBroker) PublishReceipts(receipts []model.ReadReceipt, reader string) {}
func (stubBroker) PublishNotification(n *model.Notification)                   {}
func (stubBroker) IsOnline(userID string) bool                                 { return false }

// asUser injects the authenticated participant the way SessionAuth does.
func asUser(user model.Participant) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, middleware.UserKindKey, user.Kind)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(store *stubStore, user model.Participant) http.Handler {
	chat := service.NewMessaging(store, stubBroker{}, nil)
	h := NewMessageHandler(chat)

	r := chi.NewRouter()
	r.Use(asUser(user))
	r.Post("/api/messages", h.Send)
	r.Get("/api/messages/history/{counterpartId}", h.History)
	r.Delete("/api/messages/{messageId}", h.Delete)
	r.Get("/api/messages/conversations", h.ListConversations)
	return r
}

func TestSendHandler_Created(t *testing.T) {
	req := require.New(t)
	user := model.Participant{ID: "alice", Kind: model.KindClient}
	router := newTestRouter(&stubStore{}, user)

	body := `{"text":"hello","recipient_id":"bob","recipient_kind":"vendor"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body)))

	req.Equal(http.StatusCreated, rec.Code)
	var resp struct {
		Success bool          `json:"success"`
		Message model.Message `json:"message"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.True(resp.Success)
	req.NotEmpty(resp.Message.ID)
	req.Equal("alice", resp.Message.SenderID)
}

func TestSendHandler_ValidationIs400(t *testing.T) {
	req := require.New(t)
	user := model.Participant{ID: "alice", Kind: model.KindClient}
	router := newTestRouter(&stubStore{}, user)

	cases := []string{
		`{"text":"  ","recipient_id":"bob","recipient_kind":"vendor"}`,
		`{"text":"hi","recipient_id":"alice","recipient_kind":"client"}`,
		`{"text":"hi","recipient_id":"bob","recipient_kind":"admin"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body)))
		req.Equal(http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestDeleteHandler_NonSenderIs403(t *testing.T) {
	req := require.New(t)
	store := &stubStore{message: &model.Message{ID: "m1", SenderID: "alice", RecipientID: "bob"}}
	router := newTestRouter(store, model.Participant{ID: "bob", Kind: model.KindVendor})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/messages/m1", nil))

	req.Equal(http.StatusForbidden, rec.Code)
}

func TestDeleteHandler_UnknownIs404(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&stubStore{}, model.Participant{ID: "alice", Kind: model.KindClient})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/messages/ghost", nil))

	req.Equal(http.StatusNotFound, rec.Code)
}

func TestHistoryHandler_EmptyThreadIsEmptyArray(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&stubStore{}, model.Participant{ID: "alice", Kind: model.KindClient})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages/history/bob", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"data":[]`)
}

func TestConversationsHandler_EmptyIsEmptyArray(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&stubStore{}, model.Participant{ID: "alice", Kind: model.KindClient})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/messages/conversations", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"conversations":[]`)
}
