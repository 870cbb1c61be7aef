package middleware

import (
	"context"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserKindKey  contextKey = "user_kind"
	SessionIDKey contextKey = "session_id"
)

// GetUserID returns the user id set by SessionAuth.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

// GetUserKind returns the participant kind set by SessionAuth.
func GetUserKind(ctx context.Context) model.ParticipantKind {
	v, _ := ctx.Value(UserKindKey).(model.ParticipantKind)
	return v
}

// GetParticipant returns the authenticated participant reference.
func GetParticipant(ctx context.Context) model.Participant {
	return model.Participant{ID: GetUserID(ctx), Kind: GetUserKind(ctx)}
}

func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}
