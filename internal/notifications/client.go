package notifications

import (
	"log/slog"
	"sync"
	"time"

	"folio/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must be less than pongWait

	// Watchers only listen; anything they send is read and discarded.
	maxMessageSize = 512

	sendBuffer = 64
)

var dropNotice = []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)

// Registry is the part of a hub a Client reports back to when its
// connection ends.
type Registry interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is one websocket connection watching the events of a single slug.
type Client struct {
	registry Registry
	conn     *websocket.Conn
	slug     string
	out      chan []byte

	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string
}

// NewClient creates a Client for conn. conn may be nil in tests that only
// inspect the outbound queue.
func NewClient(registry Registry, conn *websocket.Conn, slug string) *Client {
	return &Client{
		registry:  registry,
		conn:      conn,
		slug:      slug,
		out:       make(chan []byte, sendBuffer),
		closeCode: websocket.CloseNormalClosure,
	}
}

// Slug returns the slug being watched.
func (c *Client) Slug() string { return c.slug }

// Serve runs the connection until the peer disconnects or the client is
// closed. It blocks.
func (c *Client) Serve() {
	go c.writeLoop()
	c.readLoop()
}

// TrySend queues message without blocking. A full buffer drops the message
// and queues a notice instead, so the watcher knows to re-fetch. Sends
// after close are counted and ignored.
func (c *Client) TrySend(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		observability.WebSocketDrops.WithLabelValues("closed").Inc()
		return
	}

	select {
	case c.out <- message:
	default:
		observability.WebSocketDrops.WithLabelValues("full").Inc()
		select {
		case c.out <- dropNotice:
		default:
		}
	}
}

// close stops the outbound queue. The write loop sends a close frame with
// code and reason once the remaining messages are flushed.
func (c *Client) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.out)
}

func (c *Client) readLoop() {
	defer func() {
		c.registry.UnregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.Logger.Warn("websocket read error",
					slog.String("hub", c.registry.Name()),
					slog.String("slug", c.slug),
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.mu.Lock()
				frame := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
				c.mu.Unlock()
				_ = c.conn.WriteMessage(websocket.CloseMessage, frame)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
