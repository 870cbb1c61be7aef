package ws

import (
	"sync"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

// Presence tracks which users currently hold at least one live
// connection. It is the only in-process mutable shared state of the
// realtime layer: a map keyed by connection handle, updated atomically
// per connect/disconnect, scoped to process lifetime. Nothing here is
// persisted; state is rebuilt from live connections after a restart.
type Presence struct {
	mu    sync.RWMutex
	conns map[*Client]model.Participant
	users map[string]map[*Client]struct{}
	kinds map[string]model.ParticipantKind
}

func NewPresence() *Presence {
	return &Presence{
		conns: make(map[*Client]model.Participant),
		users: make(map[string]map[*Client]struct{}),
		kinds: make(map[string]model.ParticipantKind),
	}
}

// Connect registers a connection for user. Returns true when this is
// the user's first live connection (the online edge). Registering the
// same connection twice is a no-op.
func (p *Presence) Connect(c *Client, user model.Participant) (first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.conns[c]; ok {
		return false
	}
	p.conns[c] = user
	set, ok := p.users[user.ID]
	if !ok {
		set = make(map[*Client]struct{})
		p.users[user.ID] = set
		p.kinds[user.ID] = user.Kind
	}
	set[c] = struct{}{}
	return len(set) == 1
}

// Disconnect removes a connection. Idempotent: disconnecting a handle
// that is already gone reports ok=false and no offline edge, so a
// duplicated network-drop event cannot emit user_offline twice. last is
// true only when the user's final connection went away.
func (p *Presence) Disconnect(c *Client) (user model.Participant, last, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok = p.conns[c]
	if !ok {
		return model.Participant{}, false, false
	}
	delete(p.conns, c)
	set := p.users[user.ID]
	delete(set, c)
	if len(set) == 0 {
		delete(p.users, user.ID)
		delete(p.kinds, user.ID)
		last = true
	}
	return user, last, true
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users[userID]) > 0
}

// Connections returns the live connection handles of a user.
func (p *Presence) Connections(userID string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := p.users[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// All returns every live connection handle.
func (p *Presence) All() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Client, 0, len(p.conns))
	for c := range p.conns {
		out = append(out, c)
	}
	return out
}

// Snapshot lists every user currently online (for the sidebar's initial
// markers).
func (p *Presence) Snapshot() []model.Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Participant, 0, len(p.users))
	for id := range p.users {
		out = append(out, model.Participant{ID: id, Kind: p.kinds[id]})
	}
	return out
}

// Total returns the number of live connections.
func (p *Presence) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}
