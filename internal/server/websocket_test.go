package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"folio/internal/notifications"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves env.app on a loopback port and returns its address.
func (e *testEnv) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })
	return ln.Addr().String()
}

func readEvent(t *testing.T, conn *websocket.Conn) notifications.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev notifications.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestPostEvents_StreamsNewComments(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	token, _ := env.signIn(t, "reader@example.com")
	addr := env.listen(t)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/ws/posts/welcome-post", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	ev := readEvent(t, conn)
	assert.Equal(t, "connected", ev.Type)
	assert.Equal(t, "welcome-post", ev.Slug)

	body, err := json.Marshal(map[string]string{"postSlug": "welcome-post", "content": "live!"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/comments", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = httpResp.Body.Close()
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)

	ev = readEvent(t, conn)
	assert.Equal(t, notifications.EventCommentCreated, ev.Type)
	payload, ok := ev.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "live!", payload["content"])
}

func TestPostEvents_UnknownPost(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	addr := env.listen(t)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/ws/posts/no-such-post", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	ev := readEvent(t, conn)
	assert.Equal(t, "error", ev.Type)
	assert.True(t, strings.Contains(string(mustJSON(t, ev.Payload)), "post not found"))

	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server closes after the error")
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
