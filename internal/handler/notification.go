package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/middleware"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/service"
)

type NotificationHandler struct {
	notifier *service.Notifier
}

func NewNotificationHandler(notifier *service.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// List returns the user's feed, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := queryInt(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	notifications, err := h.notifier.List(r.Context(), userID, limit)
	if err != nil {
		writeAppErr(w, err, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notifications": notifications})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.notifier.UnreadCount(r.Context(), userID)
	if err != nil {
		writeAppErr(w, err, "failed to count notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

// MarkRead answers success even when the id belongs to someone else or
// is already read; ownership mismatches are a silent no-op.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	if err := h.notifier.MarkRead(r.Context(), id, userID); err != nil {
		writeAppErr(w, err, "failed to mark notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.notifier.MarkAllRead(r.Context(), userID); err != nil {
		writeAppErr(w, err, "failed to mark notifications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
