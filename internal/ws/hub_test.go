package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

func newConnectedClient(h *Hub, user model.Participant) *Client {
	c := &Client{
		hub:  h,
		send: make(chan OutgoingEvent, sendBufSize),
		user: user,
		done: make(chan struct{}),
	}
	h.presence.Connect(c, user)
	return c
}

func drain(t *testing.T, c *Client) []OutgoingEvent {
	t.Helper()
	var out []OutgoingEvent
	for {
		select {
		case ev := <-c.send:
			out = append(out, ev)
		case <-time.After(20 * time.Millisecond):
			return out
		}
	}
}

func TestHub_PublishDropsWhenOffline(t *testing.T) {
	req := require.New(t)
	h := NewHub(NewPresence(), 10)

	// Nothing is queued anywhere and nothing panics.
	h.Publish(EventNotification, "ignored", "ghost")
	req.False(h.IsOnline("ghost"))
}

func TestHub_PublishMessageFanout(t *testing.T) {
	req := require.New(t)
	h := NewHub(NewPresence(), 10)
	sender := model.Participant{ID: "alice", Kind: model.KindClient}
	recipient := model.Participant{ID: "bob", Kind: model.KindVendor}
	senderTab := newConnectedClient(h, sender)
	senderTab2 := newConnectedClient(h, sender)
	recipientTab := newConnectedClient(h, recipient)

	m := &model.Message{ID: "m1", SenderID: sender.ID, RecipientID: recipient.ID, Text: "hi", Status: model.MessageStatusSent}
	h.PublishMessage(m)

	// The recipient gets receive_message.
	got := drain(t, recipientTab)
	req.Len(got, 1)
	req.Equal(EventReceiveMessage, got[0].Type)

	// Every sender tab gets the echo with the server-assigned id.
	for _, tab := range []*Client{senderTab, senderTab2} {
		got := drain(t, tab)
		req.Len(got, 1)
		req.Equal(EventMessageSent, got[0].Type)
	}
}

func TestHub_PublishReceiptsGroupsBySender(t *testing.T) {
	req := require.New(t)
	h := NewHub(NewPresence(), 10)
	alice := newConnectedClient(h, model.Participant{ID: "alice", Kind: model.KindClient})
	carol := newConnectedClient(h, model.Participant{ID: "carol", Kind: model.KindPlanner})

	h.PublishReceipts([]model.ReadReceipt{
		{MessageID: "m1", SenderID: "alice"},
		{MessageID: "m2", SenderID: "alice"},
		{MessageID: "m3", SenderID: "carol"},
	}, "bob")

	aliceEvents := drain(t, alice)
	req.Len(aliceEvents, 1)
	payload, ok := aliceEvents[0].Payload.(MessagesReadPayload)
	req.True(ok)
	req.Equal("bob", payload.ReaderID)
	req.ElementsMatch([]string{"m1", "m2"}, payload.MessageIDs)

	carolEvents := drain(t, carol)
	req.Len(carolEvents, 1)
	payload, ok = carolEvents[0].Payload.(MessagesReadPayload)
	req.True(ok)
	req.Equal([]string{"m3"}, payload.MessageIDs)
}

func TestHub_BackpressureClosesSlowClient(t *testing.T) {
	req := require.New(t)
	h := NewHub(NewPresence(), 10)
	user := model.Participant{ID: "slow", Kind: model.KindClient}
	c := &Client{
		hub:  h,
		send: make(chan OutgoingEvent), // unbuffered, nothing reading
		user: user,
		done: make(chan struct{}),
	}
	h.presence.Connect(c, user)

	h.Publish(EventNotification, "overflow", user.ID)

	select {
	case <-c.done:
	default:
		req.Fail("slow client was not closed")
	}
}
