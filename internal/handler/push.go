package handler

import (
	"encoding/json"
	"net/http"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/middleware"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/push"
)

// PushHandler proxies subscription management to the push microservice.
// The user id always comes from the session, never from the body.
type PushHandler struct {
	client *push.Client
}

func NewPushHandler(client *push.Client) *PushHandler {
	return &PushHandler{client: client}
}

type subscribeRequest struct {
	Subscription push.PushSubscription `json:"subscription"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subscription.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "subscription endpoint is required")
		return
	}
	userID := middleware.GetUserID(r.Context())
	if err := h.client.Subscribe(r.Context(), userID, req.Subscription); err != nil {
		writeAppErr(w, err, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID := middleware.GetUserID(r.Context())
	if err := h.client.Unsubscribe(r.Context(), userID, req.Endpoint); err != nil {
		writeAppErr(w, err, "failed to unsubscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
