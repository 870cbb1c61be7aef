package handler

import (
	"encoding/json"
	"net/http"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/service"
)

// EventHandler is the domain event intake: consultation and booking
// services post here to fan out notifications. Guarded by the
// InternalOnly middleware, not by a session.
type EventHandler struct {
	notifier *service.Notifier
}

func NewEventHandler(notifier *service.Notifier) *EventHandler {
	return &EventHandler{notifier: notifier}
}

type domainEventRequest struct {
	RecipientID   string `json:"recipient_id"`
	RecipientKind string `json:"recipient_kind"`
	Type          string `json:"type"`
	Text          string `json:"text"`
	SenderID      string `json:"sender_id,omitempty"`
	SenderKind    string `json:"sender_kind,omitempty"`
}

func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req domainEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := model.ParseKind(req.RecipientKind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown recipient kind")
		return
	}
	typ, err := model.ParseNotificationType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown notification type")
		return
	}
	recipient := model.Participant{ID: req.RecipientID, Kind: kind}

	var sender *model.Participant
	if req.SenderID != "" {
		senderKind, err := model.ParseKind(req.SenderKind)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown sender kind")
			return
		}
		sender = &model.Participant{ID: req.SenderID, Kind: senderKind}
	}

	n, err := h.notifier.Notify(r.Context(), recipient, typ, req.Text, sender)
	if err != nil {
		writeAppErr(w, err, "failed to ingest event")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "notification": n})
}
