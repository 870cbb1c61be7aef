package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newInternalProbe() (http.Handler, *bool) {
	reached := false
	h := InternalOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &reached
}

func TestInternalOnly_PrivateIPAllowed(t *testing.T) {
	req := require.New(t)
	h, reached := newInternalProbe()

	r := httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	r.RemoteAddr = "10.1.2.3:4444"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	req.True(*reached)
	req.Equal(http.StatusNoContent, rec.Code)
}

func TestInternalOnly_PublicIPDenied(t *testing.T) {
	req := require.New(t)
	h, reached := newInternalProbe()

	r := httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	r.RemoteAddr = "203.0.113.9:4444"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	req.False(*reached)
	req.Equal(http.StatusForbidden, rec.Code)
}

func TestInternalOnly_ForwardedPublicIPDenied(t *testing.T) {
	req := require.New(t)
	h, reached := newInternalProbe()

	// The proxy-reported client address wins over the socket address.
	r := httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	r.RemoteAddr = "127.0.0.1:4444"
	r.Header.Set("X-Real-Ip", "203.0.113.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	req.False(*reached)
	req.Equal(http.StatusForbidden, rec.Code)
}

func TestInternalOnly_SecretHeaderAllowed(t *testing.T) {
	req := require.New(t)
	t.Setenv("INTERNAL_EVENTS_SECRET", "s3cret")
	h, reached := newInternalProbe()

	r := httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	r.RemoteAddr = "203.0.113.9:4444"
	r.Header.Set("X-Internal-Secret", "s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	req.True(*reached)
}
