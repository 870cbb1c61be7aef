package model

import "time"

// ConversationSummary is one sidebar entry: a distinct counterpart with
// the latest message preview and the requester's unread count. It is
// always derived from the messages table, never stored, so it cannot
// drift from the store.
type ConversationSummary struct {
	CounterpartID   string          `json:"counterpart_id"`
	CounterpartKind ParticipantKind `json:"counterpart_kind"`
	LastMessageText string          `json:"last_message_text"`
	LastMessageAt   time.Time       `json:"last_message_at"`
	UnreadCount     int             `json:"unread_count"`
}
