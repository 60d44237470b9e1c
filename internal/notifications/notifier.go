// Package notifications delivers live comment and reaction events to
// websocket clients watching a content item.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"folio/internal/cache"
	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types sent to clients.
const (
	EventCommentCreated   = "comment_created"
	EventCommentHidden    = "comment_hidden"
	EventReactionsChanged = "reactions_changed"
)

const postEventsPattern = "events:post:*"

// Event is one live update about a content item.
type Event struct {
	Type    string    `json:"type"`
	Slug    string    `json:"slug"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher sends post events to whoever is listening.
type Publisher interface {
	PublishPostEvent(ctx context.Context, ev Event) error
}

func encodeEvent(ev Event) ([]byte, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

// Notifier publishes post events into Redis channels, one per slug.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostEvent publishes ev on the slug's channel. A nil client is a no-op.
func (n *Notifier) PublishPostEvent(ctx context.Context, ev Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, cache.PostEventsChannel(ev.Slug), payload).Err()
}

// StartPostSubscriber subscribes to every post channel and calls onMessage
// with the slug and raw payload until ctx is done.
func (n *Notifier) StartPostSubscriber(
	ctx context.Context, onMessage func(slug string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, postEventsPattern)
	// Wait for the subscription so publishes right after start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", postEventsPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				slug, ok := SlugFromChannel(msg.Channel)
				if !ok {
					observability.Logger.Warn("invalid post event channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.Logger.Error("panic in post subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(slug, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// SlugFromChannel extracts the slug from a post events channel name.
func SlugFromChannel(channel string) (string, bool) {
	slug, ok := strings.CutPrefix(channel, cache.PostEventsChannel(""))
	if !ok || slug == "" {
		return "", false
	}
	return slug, true
}
