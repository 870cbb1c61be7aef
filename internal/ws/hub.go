package ws

import (
	"context"
	"time"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/apperr"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

// ChatService is the messaging core the hub forwards chat frames to.
// Implemented by service.Messaging; kept as an interface so the hub
// never depends on the service package.
type ChatService interface {
	Send(ctx context.Context, sender, recipient model.Participant, text string) (*model.Message, error)
	MarkRead(ctx context.Context, ids []string, reader string) error
}

// Hub is the realtime broker: it routes ephemeral events to connected
// clients keyed by user identity, independent of persistence. Events to
// a user with no live connection are dropped (at-most-once); the
// durable facts live in the message and notification stores.
type Hub struct {
	presence   *Presence
	maxConns   int
	chat       ChatService
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(presence *Presence, maxConns int) *Hub {
	if maxConns <= 0 {
		maxConns = 10000
	}
	return &Hub{
		presence:   presence,
		maxConns:   maxConns,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// AttachChat wires the messaging core in. Must be called before Run;
// split from the constructor because the service itself publishes
// through this hub.
func (h *Hub) AttachChat(chat ChatService) { h.chat = chat }

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) shutdown() {
	// Snapshot first; never perform network I/O while the presence
	// registry is being drained.
	clients := h.presence.All()
	for _, c := range clients {
		h.presence.Disconnect(c)
	}
	metricOnlineConns.Set(0)
	for _, c := range clients {
		c.Close()
	}
	for _, c := range clients {
		c.Wait()
	}
}

func (h *Hub) addClient(c *Client) {
	if h.presence.Total() >= h.maxConns {
		logger.Errorf("ws connection limit reached (%d), rejecting user=%s", h.maxConns, c.user.ID)
		c.Close()
		return
	}
	first := h.presence.Connect(c, c.user)
	metricOnlineConns.Set(float64(h.presence.Total()))
	if first {
		h.broadcastPresence(c.user, true)
	}
}

func (h *Hub) removeClient(c *Client) {
	user, last, ok := h.presence.Disconnect(c)
	if !ok {
		return
	}
	metricOnlineConns.Set(float64(h.presence.Total()))
	c.Close()
	if last {
		h.broadcastPresence(user, false)
	}
}

// HandleFrame dispatches a frame read from a client connection. The
// sender identity is taken from the connection, never from the frame.
func (h *Hub) HandleFrame(ctx context.Context, c *Client, frame IncomingFrame) {
	switch frame.Type {
	case EventJoin:
		h.handleJoin(c)
	case EventSendMessage:
		h.handleSendMessage(ctx, c, frame)
	case EventTyping:
		h.handleTyping(c, frame)
	case EventMarkRead:
		h.handleMarkRead(ctx, c, frame)
	default:
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: ErrorPayload{Reason: "unknown event type"}})
	}
}

// handleJoin re-announces presence and replays the current online set
// to the joining client. The connection is already bound to its user at
// upgrade time, so join carries no authority.
func (h *Hub) handleJoin(c *Client) {
	for _, u := range h.presence.Snapshot() {
		if u.ID == c.user.ID {
			continue
		}
		h.sendToClient(c, OutgoingEvent{Type: EventUserOnline, Payload: PresencePayload{UserID: u.ID, Kind: u.Kind}})
	}
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, frame IncomingFrame) {
	defer logger.DeferLogDuration("ws.handleSendMessage", time.Now())()
	kind, err := model.ParseKind(frame.ToKind)
	if err != nil {
		h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: ErrorPayload{Reason: "unknown recipient kind"}})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recipient := model.Participant{ID: frame.ToID, Kind: kind}
	if _, err := h.chat.Send(ctx, c.user, recipient, frame.Text); err != nil {
		if apperr.IsClientFault(err) {
			h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: ErrorPayload{Reason: err.Error()}})
		} else {
			logger.Errorf("ws send message user=%s: %v", c.user.ID, err)
			h.sendToClient(c, OutgoingEvent{Type: EventError, Payload: ErrorPayload{Reason: "failed to send message"}})
		}
	}
}

// handleTyping relays the ephemeral signal to the target. Nothing is
// stored and nothing expires server-side; the receiving client drops a
// stale signal after ~1s on its own.
func (h *Hub) handleTyping(c *Client, frame IncomingFrame) {
	if frame.ToID == "" || frame.ToID == c.user.ID {
		return
	}
	h.Publish(EventUserTyping, TypingPayload{
		FromID:   c.user.ID,
		FromKind: c.user.Kind,
		IsTyping: frame.IsTyping,
		At:       time.Now().UTC(),
	}, frame.ToID)
}

func (h *Hub) handleMarkRead(ctx context.Context, c *Client, frame IncomingFrame) {
	if len(frame.MessageIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.chat.MarkRead(ctx, frame.MessageIDs, c.user.ID); err != nil {
		logger.Errorf("ws mark read user=%s: %v", c.user.ID, err)
	}
}

func (h *Hub) broadcastPresence(user model.Participant, online bool) {
	evType := EventUserOffline
	if online {
		evType = EventUserOnline
	}
	out := OutgoingEvent{Type: evType, Payload: PresencePayload{UserID: user.ID, Kind: user.Kind}}
	for _, c := range h.presence.All() {
		if c.user.ID == user.ID {
			continue
		}
		h.sendToClient(c, out)
	}
}

// Publish delivers an event to every live connection of toUserID. With
// no live connection the event is dropped: no queueing, no redelivery.
func (h *Hub) Publish(event EventType, payload any, toUserID string) {
	targets := h.presence.Connections(toUserID)
	if len(targets) == 0 {
		metricPublishOffline.Inc()
		return
	}
	out := OutgoingEvent{Type: event, Payload: payload}
	for _, c := range targets {
		h.sendToClient(c, out)
	}
	metricPublishOK.Inc()
}

// PublishMessage fans a freshly persisted message out: the recipient
// gets receive_message, the sender's other tabs get a message_sent echo
// carrying the server-assigned id and timestamp.
func (h *Hub) PublishMessage(m *model.Message) {
	h.Publish(EventReceiveMessage, m, m.RecipientID)
	h.Publish(EventMessageSent, m, m.SenderID)
}

// PublishReceipts notifies original senders that the reader has marked
// their messages read.
func (h *Hub) PublishReceipts(receipts []model.ReadReceipt, readerID string) {
	bySender := make(map[string][]string, 2)
	for _, r := range receipts {
		bySender[r.SenderID] = append(bySender[r.SenderID], r.MessageID)
	}
	for senderID, ids := range bySender {
		h.Publish(EventMessagesRead, MessagesReadPayload{ReaderID: readerID, MessageIDs: ids}, senderID)
	}
}

// PublishNotification pushes a live badge update for a stored
// notification.
func (h *Hub) PublishNotification(n *model.Notification) {
	h.Publish(EventNotification, n, n.RecipientID)
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

func (h *Hub) sendToClient(c *Client, ev OutgoingEvent) {
	select {
	case c.send <- ev:
	case <-c.done:
	default:
		// Backpressure: send buffer full, close the slow client.
		metricBackpressure.Inc()
		logger.Errorf("ws send buffer full, closing slow client user=%s", c.user.ID)
		c.Close()
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
