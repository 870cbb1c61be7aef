package ws

import (
	"time"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

type EventType string

// Client -> server frame types.
const (
	EventJoin        EventType = "join"
	EventSendMessage EventType = "send_message"
	EventTyping      EventType = "typing"
	EventMarkRead    EventType = "mark_read"
)

// Server -> client event types.
const (
	EventReceiveMessage EventType = "receive_message"
	EventMessageSent    EventType = "message_sent"
	EventUserTyping     EventType = "user_typing"
	EventUserOnline     EventType = "user_online"
	EventUserOffline    EventType = "user_offline"
	EventMessagesRead   EventType = "messages_read"
	EventNotification   EventType = "notification"
	EventError          EventType = "error"
)

// IncomingFrame is what a connected client sends to the server. The
// sender identity always comes from the authenticated connection, never
// from the frame.
type IncomingFrame struct {
	Type EventType `json:"type"`

	// send_message / typing
	ToID   string `json:"to_id,omitempty"`
	ToKind string `json:"to_kind,omitempty"`
	Text   string `json:"text,omitempty"`

	// typing
	IsTyping bool `json:"is_typing,omitempty"`

	// mark_read
	MessageIDs []string `json:"message_ids,omitempty"`
}

// OutgoingEvent is what the server pushes to a client. Payloads are
// typed structs to keep the hot path off map[string]any.
type OutgoingEvent struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// TypingPayload relays an ephemeral typing signal. It is never stored;
// the receiving client expires it (~1s) when no refresh arrives.
type TypingPayload struct {
	FromID   string                `json:"from_id"`
	FromKind model.ParticipantKind `json:"from_kind"`
	IsTyping bool                  `json:"is_typing"`
	At       time.Time             `json:"at"`
}

// PresencePayload is broadcast on online/offline edges.
type PresencePayload struct {
	UserID string                `json:"user_id"`
	Kind   model.ParticipantKind `json:"kind"`
}

// MessagesReadPayload is the read receipt delivered to the original
// sender of the messages.
type MessagesReadPayload struct {
	ReaderID   string   `json:"reader_id"`
	MessageIDs []string `json:"message_ids"`
}

// ErrorPayload carries a terse reason for a rejected frame.
type ErrorPayload struct {
	Reason string `json:"reason"`
}
