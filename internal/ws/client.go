package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GreatRoyce/ElitePlan-sub000/internal/logger"
	"github.com/GreatRoyce/ElitePlan-sub000/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256

	// writePump drains at most this many queued events per wakeup, so a
	// ping is never starved by a long burst.
	drainBatch = 16
)

// bufPool pools bytes.Buffer for JSON encoding in the hot path (writePump).
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// marshalFrame encodes an outgoing event into buf and returns the wire
// bytes, without the trailing newline json.Encoder appends. The returned
// slice aliases buf and is only valid until buf is reused.
func marshalFrame(buf *bytes.Buffer, ev OutgoingEvent) ([]byte, error) {
	buf.Reset()
	if err := json.NewEncoder(buf).Encode(ev); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	return data, nil
}

// Client is a single WebSocket connection bound to an authenticated
// participant.
// Lifecycle: NewClient -> Start(ctx, cancel) -> [readPump, writePump] -> Close -> Wait.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan OutgoingEvent
	user model.Participant

	// done is the non-blocking guard used by sendToClient.
	done chan struct{}
	// cancel cancels the context passed to Start, shutting the pumps down.
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
}

func NewClient(hub *Hub, conn *websocket.Conn, user model.Participant) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan OutgoingEvent, sendBufSize),
		user: user,
		done: make(chan struct{}),
	}
}

// User returns the participant this connection authenticated as.
func (c *Client) User() model.Participant { return c.user }

// Start launches the pumps with a controlled lifecycle. ctx bounds pump
// lifetime; cancel is kept for Close().
func (c *Client) Start(ctx context.Context, cancel context.CancelFunc) {
	c.cancel = cancel
	c.wg.Add(2)
	go c.writePump(ctx)
	go c.readPump(ctx)
}

// Wait blocks until both pump goroutines have exited.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Close signals the client to stop. Safe to call multiple times from
// any goroutine.
func (c *Client) Close() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		// Forces both pumps to unblock (Read/WriteMessage will error).
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// readPump reads frames from the connection. Exits on read error
// (triggered by conn.Close from Close() or writePump exit).
func (c *Client) readPump(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Errorf("ws set read deadline user=%s: %v", c.user.ID, err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("ws read error user=%s: %v", c.user.ID, err)
			}
			return
		}

		var frame IncomingFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logger.Errorf("ws unmarshal error user=%s: %v", c.user.ID, err)
			continue
		}

		c.hub.HandleFrame(ctx, c, frame)
	}
}

// writeEvent pushes one event down the connection under a fresh write
// deadline. An encode failure skips the event; a write failure is fatal
// for the connection.
func (c *Client) writeEvent(ev OutgoingEvent) (fatal bool) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		logger.Errorf("ws set write deadline user=%s: %v", c.user.ID, err)
		return true
	}
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	data, err := marshalFrame(buf, ev)
	if err != nil {
		logger.Errorf("ws marshal error user=%s type=%s: %v", c.user.ID, ev.Type, err)
		return false
	}
	return c.conn.WriteMessage(websocket.TextMessage, data) != nil
}

// writePump writes queued events to the connection, draining bursts in
// small batches between pings. Exits on ctx cancellation or write error.
func (c *Client) writePump(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
				logger.Errorf("ws close message user=%s: %v", c.user.ID, err)
			}
			return
		case ev := <-c.send:
			if c.writeEvent(ev) {
				return
			}
		drain:
			for n := 1; n < drainBatch; n++ {
				select {
				case next := <-c.send:
					if c.writeEvent(next) {
						return
					}
				default:
					break drain
				}
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Errorf("ws set write deadline user=%s: %v", c.user.ID, err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
