package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/middleware"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/repository"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/storage"
)

// AuthHandler issues and revokes signing sessions. Identity itself is
// established by the surrounding platform; this service only needs a
// session bound to a participant reference.
type AuthHandler struct {
	sessions *repository.SessionRepository
	store    storage.SessionSecretStore
}

func NewAuthHandler(sessions *repository.SessionRepository, store storage.SessionSecretStore) *AuthHandler {
	return &AuthHandler{sessions: sessions, store: store}
}

type devLoginRequest struct {
	UserID     string `json:"user_id"`
	Kind       string `json:"kind"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type devLoginResponse struct {
	Success       bool   `json:"success"`
	SessionID     string `json:"session_id"`
	SessionSecret string `json:"session_secret"`
}

// DevLogin creates a session for an arbitrary participant. Registered
// only with -dev; production sessions come from the platform's auth
// service writing to the same tables.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	var req devLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown participant kind")
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = "dev"
	}

	sessionID := uuid.New().String()
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	secretB64 := base64.StdEncoding.EncodeToString(secret)
	sum := sha256.Sum256(secret)
	now := time.Now().UTC()

	session := &model.Session{
		ID:         sessionID,
		UserID:     req.UserID,
		UserKind:   kind,
		DeviceID:   req.DeviceID,
		DeviceName: strings.TrimSpace(req.DeviceName),
		SecretHash: hex.EncodeToString(sum[:]),
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := h.sessions.Upsert(r.Context(), session); err != nil {
		logger.Errorf("dev login upsert session: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	if err := h.store.SetSessionSecret(r.Context(), sessionID, secretB64); err != nil {
		logger.Errorf("dev login set secret: %v", err)
		if _, revokeErr := h.sessions.RevokeByID(r.Context(), sessionID); revokeErr != nil {
			logger.Errorf("dev login rollback revoke: %v", revokeErr)
		}
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, devLoginResponse{Success: true, SessionID: sessionID, SessionSecret: secretB64})
}

// Logout revokes the current session and drops its secret.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, err := h.sessions.RevokeByID(r.Context(), sessionID); err != nil {
		logger.Errorf("logout revoke session_id=%s: %v", middleware.MaskSessionID(sessionID), err)
		writeError(w, http.StatusInternalServerError, "failed to logout")
		return
	}
	if err := h.store.DeleteSessionSecret(r.Context(), sessionID); err != nil {
		logger.Errorf("logout delete secret session_id=%s: %v", middleware.MaskSessionID(sessionID), err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
