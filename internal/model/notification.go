package model

import (
	"fmt"
	"time"
)

// NotificationType tags the domain event a notification originates from.
type NotificationType string

const (
	NotificationMessage      NotificationType = "message"
	NotificationConsultation NotificationType = "consultation"
	NotificationBooking      NotificationType = "booking"
	NotificationSystem       NotificationType = "system"
)

// ParseNotificationType validates a type tag from the event intake.
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationMessage, NotificationConsultation, NotificationBooking, NotificationSystem:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

// Notification is a persisted, read-trackable event surfaced to one
// user. IsRead transitions false -> true exactly once, never back.
type Notification struct {
	ID            string           `json:"id"`
	RecipientID   string           `json:"recipient_id"`
	RecipientKind ParticipantKind  `json:"recipient_kind"`
	SenderID      *string          `json:"sender_id,omitempty"`
	SenderKind    *ParticipantKind `json:"sender_kind,omitempty"`
	Type          NotificationType `json:"type"`
	Text          string           `json:"text"`
	IsRead        bool             `json:"is_read"`
	CreatedAt     time.Time        `json:"created_at"`
}
