package model

import "time"

// Session is an authenticated device session issued by the surrounding
// auth collaborator. This core only validates sessions; it never issues
// them (except the -dev login helper).
type Session struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	UserKind   ParticipantKind `json:"user_kind"`
	DeviceID   string          `json:"device_id"`
	DeviceName string          `json:"device_name"`
	SecretHash string          `json:"-"`
	LastSeenAt time.Time       `json:"last_seen_at"`
	CreatedAt  time.Time       `json:"created_at"`
	RevokedAt  *time.Time      `json:"revoked_at,omitempty"`
}
