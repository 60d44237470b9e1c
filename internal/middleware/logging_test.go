package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(observability.RequestIDKey).(string)
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "req-42", string(body))
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := observability.Logger
	observability.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { observability.Logger = prev })
	return &buf
}

func TestStructuredLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		level string
		msg   string
	}{
		{"ok", "/posts/welcome-post", "INFO", "request processed"},
		{"probe", "/health/live", "DEBUG", "request processed"},
		{"client error", "/missing", "WARN", "request rejected"},
		{"handler error", "/boom", "ERROR", "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				c.Locals("userEmail", "reader@example.com")
				return c.Next()
			})
			app.Use(StructuredLogger())
			app.Get("/posts/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })
			app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
			app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrInternalServerError })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			resp.Body.Close()

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, tt.msg, line["msg"])
			assert.Equal(t, "reader@example.com", line["user"])
			assert.Equal(t, tt.path, line["path"])
		})
	}
}

func TestStructuredLogger_RecordsRoutePattern(t *testing.T) {
	buf := captureLogs(t)
	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/posts/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/welcome-post", nil))
	require.NoError(t, err)
	resp.Body.Close()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/posts/:slug", line["route"])
	assert.EqualValues(t, 200, line["status"])
	assert.NotContains(t, line, "user")
}
