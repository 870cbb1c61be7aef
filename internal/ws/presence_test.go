package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

var testUser = model.Participant{ID: "u1", Kind: model.KindClient}

func TestPresence_FirstAndLastEdges(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	tab1 := &Client{done: make(chan struct{})}
	tab2 := &Client{done: make(chan struct{})}

	// First tab produces the online edge, the second does not.
	req.True(p.Connect(tab1, testUser))
	req.False(p.Connect(tab2, testUser))
	req.True(p.IsOnline(testUser.ID))
	req.Equal(2, p.Total())

	// Closing one tab keeps the user online.
	_, last, ok := p.Disconnect(tab1)
	req.True(ok)
	req.False(last)
	req.True(p.IsOnline(testUser.ID))

	// The final tab produces the offline edge.
	_, last, ok = p.Disconnect(tab2)
	req.True(ok)
	req.True(last)
	req.False(p.IsOnline(testUser.ID))
	req.Equal(0, p.Total())
}

func TestPresence_DisconnectIdempotent(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	c := &Client{done: make(chan struct{})}
	p.Connect(c, testUser)

	_, last, ok := p.Disconnect(c)
	req.True(ok)
	req.True(last)

	// A duplicated drop event must not produce a second offline edge.
	_, last, ok = p.Disconnect(c)
	req.False(ok)
	req.False(last)
}

func TestPresence_DuplicateConnectNoOp(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	c := &Client{done: make(chan struct{})}

	req.True(p.Connect(c, testUser))
	req.False(p.Connect(c, testUser))
	req.Equal(1, p.Total())

	_, last, ok := p.Disconnect(c)
	req.True(ok)
	req.True(last)
}

func TestPresence_Snapshot(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	vendor := model.Participant{ID: "v1", Kind: model.KindVendor}
	c1 := &Client{done: make(chan struct{})}
	c2 := &Client{done: make(chan struct{})}
	p.Connect(c1, testUser)
	p.Connect(c2, vendor)

	snap := p.Snapshot()
	req.Len(snap, 2)
	byID := map[string]model.ParticipantKind{}
	for _, u := range snap {
		byID[u.ID] = u.Kind
	}
	req.Equal(model.KindClient, byID[testUser.ID])
	req.Equal(model.KindVendor, byID[vendor.ID])
}

func TestPresence_Connections(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	c1 := &Client{done: make(chan struct{})}
	c2 := &Client{done: make(chan struct{})}
	p.Connect(c1, testUser)
	p.Connect(c2, testUser)

	req.Len(p.Connections(testUser.ID), 2)
	req.Nil(p.Connections("ghost"))
}
