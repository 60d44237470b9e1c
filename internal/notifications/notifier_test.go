package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishPostEvent(context.Background(), Event{Type: EventCommentCreated, Slug: "welcome-post"}))
	assert.NoError(t, n.StartPostSubscriber(context.Background(), func(string, string) {}))
}

func TestSlugFromChannel(t *testing.T) {
	t.Parallel()

	slug, ok := SlugFromChannel("events:post:welcome-post")
	assert.True(t, ok)
	assert.Equal(t, "welcome-post", slug)

	_, ok = SlugFromChannel("events:post:")
	assert.False(t, ok)
	_, ok = SlugFromChannel("notifications:user:1")
	assert.False(t, ok)
}

func TestHub_StartWiringForwardsRedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	watcher, err := hub.Register("welcome-post", nil)
	require.NoError(t, err)
	bystander, err := hub.Register("other-post", nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishPostEvent(context.Background(), Event{
		Type:    EventCommentCreated,
		Slug:    "welcome-post",
		Payload: map[string]string{"content": "Nice post"},
	}))

	var ev Event
	require.NoError(t, json.Unmarshal(receive(t, watcher), &ev))
	assert.Equal(t, EventCommentCreated, ev.Type)
	assert.Equal(t, "welcome-post", ev.Slug)
	assert.Empty(t, bystander.out)

	_ = hub.Shutdown(context.Background())
}
