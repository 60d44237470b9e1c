package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"folio/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbackRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback",
		strings.NewReader(`{"email":"reader@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CallbackSecretHeader, testCallbackSecret)
	return req
}

func TestSetupMiddleware_ErrorResponsesCarryHeaders(t *testing.T) {
	env := newTestEnv(t, nil, func(cfg *config.Config) {
		cfg.AllowedOrigins = "http://localhost:5173"
	})

	req := httptest.NewRequest(http.MethodPost, "/api/comments",
		strings.NewReader(`{"postSlug":"welcome-post","content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	resp, _ := env.send(t, req)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRateLimit_AuthCallback(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb, func(cfg *config.Config) { cfg.Env = "production" })

	for i := 0; i < 10; i++ {
		resp, body := env.send(t, callbackRequest())
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d: %v", i, body)
	}
	resp, body := env.send(t, callbackRequest())
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", body["error"])

	// Counters are kept per resource.
	resp, _ = env.do(t, http.MethodGet, "/api/posts", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimit_FailsClosedWithoutRedis(t *testing.T) {
	env := newTestEnv(t, nil, func(cfg *config.Config) { cfg.Env = "production" })

	resp, _ := env.send(t, callbackRequest())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// Page views fail open.
	resp, _ = env.do(t, http.MethodPost, "/api/views", nil, "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}
