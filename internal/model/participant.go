package model

import "fmt"

// ParticipantKind is the closed set of marketplace roles that can take
// part in a conversation. Unknown tags are rejected at the boundary.
type ParticipantKind string

const (
	KindClient  ParticipantKind = "client"
	KindVendor  ParticipantKind = "vendor"
	KindPlanner ParticipantKind = "planner"
)

// ParseKind validates a role tag coming from a request or a WebSocket
// frame. It never defaults silently.
func ParseKind(s string) (ParticipantKind, error) {
	switch ParticipantKind(s) {
	case KindClient, KindVendor, KindPlanner:
		return ParticipantKind(s), nil
	}
	return "", fmt.Errorf("unknown participant kind %q", s)
}

// Participant is a role-tagged identity reference. Profiles live in the
// surrounding CRUD application; this core only needs id + kind.
type Participant struct {
	ID   string          `json:"id"`
	Kind ParticipantKind `json:"kind"`
}

func (p Participant) IsZero() bool { return p.ID == "" }
