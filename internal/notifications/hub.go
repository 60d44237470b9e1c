package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"folio/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections watching one slug
	maxConnsPerSlug = 500
	// Max total connections
	maxTotalConns = 10000
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// Hub is a websocket hub that maps slug -> watching Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "post events hub" }

// Register a connection for a given slug. Returns the Client or error if limits exceeded.
func (h *Hub) Register(slug string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[slug]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[slug] = m
	}
	if len(m) >= maxConnsPerSlug {
		return nil, errors.New("connection limit for this post reached")
	}

	client := NewClient(h, conn, slug)
	m[client] = struct{}{}
	h.totalConns++
	observability.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client; unknown clients are ignored.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	slug := client.Slug()
	m, ok := h.conns[slug]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		observability.ActiveWebSockets.Dec()
		client.close(websocket.CloseNormalClosure, "")
	}
	if len(m) == 0 {
		delete(h.conns, slug)
	}
}

// Broadcast sends message to all connections watching slug.
func (h *Hub) Broadcast(slug string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[slug] {
		c.TrySend(message)
	}
}

// Count returns the number of connections watching slug.
func (h *Hub) Count(slug string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[slug])
}

// PublishPostEvent delivers ev to local clients directly. It lets the hub
// stand in for the Notifier when Redis is not configured.
func (h *Hub) PublishPostEvent(_ context.Context, ev Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	h.Broadcast(ev.Slug, payload)
	return nil
}

// StartWiring connects the Notifier to this hub: it subscribes to the post
// channels and forwards messages to the clients watching each slug.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPostSubscriber(ctx, func(slug, payload string) {
		h.Broadcast(slug, []byte(payload))
	})
}

// Shutdown asks every connection to close with a going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for client := range clients {
			client.close(websocket.CloseGoingAway, "server shutting down")
		}
	}
	observability.Logger.Info("websocket hub shut down",
		slog.String("hub", h.Name()), slog.Int("connections", h.totalConns))
	observability.ActiveWebSockets.Sub(float64(h.totalConns))
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
