package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/middleware"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/service"
)

type MessageHandler struct {
	chat *service.Messaging
}

func NewMessageHandler(chat *service.Messaging) *MessageHandler {
	return &MessageHandler{chat: chat}
}

type sendMessageRequest struct {
	Text          string `json:"text"`
	RecipientID   string `json:"recipient_id"`
	RecipientKind string `json:"recipient_kind"`
}

// Send persists a message over HTTP. The WebSocket path is the usual
// one; this exists for clients without a live connection.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := model.ParseKind(req.RecipientKind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown recipient kind")
		return
	}
	sender := middleware.GetParticipant(r.Context())
	recipient := model.Participant{ID: req.RecipientID, Kind: kind}

	m, err := h.chat.Send(r.Context(), sender, recipient, req.Text)
	if err != nil {
		writeAppErr(w, err, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": m})
}

// History returns the thread with a counterpart, oldest first. "before"
// restarts pagination from a known message id.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	counterpartID := chi.URLParam(r, "counterpartId")
	userID := middleware.GetUserID(r.Context())

	limit := queryInt(r, "limit", 50)
	if limit > 100 {
		limit = 100
	}
	beforeID := r.URL.Query().Get("before")

	messages, err := h.chat.History(r.Context(), userID, counterpartID, limit, beforeID)
	if err != nil {
		writeAppErr(w, err, "failed to get history")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": messages})
}

type markReadRequest struct {
	MessageIDs []string `json:"message_ids"`
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.MessageIDs) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	userID := middleware.GetUserID(r.Context())
	if err := h.chat.MarkRead(r.Context(), req.MessageIDs, userID); err != nil {
		writeAppErr(w, err, "failed to mark as read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageId")
	userID := middleware.GetUserID(r.Context())

	if err := h.chat.Delete(r.Context(), messageID, userID); err != nil {
		writeAppErr(w, err, "failed to delete message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conversations, err := h.chat.ListConversations(r.Context(), userID)
	if err != nil {
		writeAppErr(w, err, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []model.ConversationSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "conversations": conversations})
}

// DeleteConversation removes the whole thread with the counterpart,
// both directions. Deleting a thread that does not exist still answers
// success: the end state is the same.
func (h *MessageHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	counterpartID := chi.URLParam(r, "counterpartId")
	userID := middleware.GetUserID(r.Context())

	if err := h.chat.DeleteConversation(r.Context(), userID, counterpartID); err != nil {
		writeAppErr(w, err, "failed to delete conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
