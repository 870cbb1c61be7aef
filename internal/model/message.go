package model

import "time"

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// rank orders statuses for the forward-only transition check. The
// database enforces the same rule; this is for in-process guards.
func (s MessageStatus) rank() int {
	switch s {
	case MessageStatusSent:
		return 1
	case MessageStatusDelivered:
		return 2
	case MessageStatusRead:
		return 3
	}
	return 0
}

// CanTransitionTo reports whether moving from s to next is a forward
// transition (sent -> delivered -> read, delivered optional).
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	return next.rank() > s.rank()
}

// Message is a point-to-point message between two participants. The text
// is immutable once created; only Status moves, and only forward.
type Message struct {
	ID            string          `json:"id"`
	SenderID      string          `json:"sender_id"`
	SenderKind    ParticipantKind `json:"sender_kind"`
	RecipientID   string          `json:"recipient_id"`
	RecipientKind ParticipantKind `json:"recipient_kind"`
	Text          string          `json:"text"`
	Status        MessageStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (m *Message) Sender() Participant {
	return Participant{ID: m.SenderID, Kind: m.SenderKind}
}

func (m *Message) Recipient() Participant {
	return Participant{ID: m.RecipientID, Kind: m.RecipientKind}
}

// ReadReceipt identifies a message that was just marked read, together
// with its original sender (the party to notify).
type ReadReceipt struct {
	MessageID string `json:"message_id"`
	SenderID  string `json:"sender_id"`
}
