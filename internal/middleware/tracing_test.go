package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracing(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("middleware-test")
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		observability.Tracer = prev
		otel.SetTextMapPropagator(prevProp)
	})
	return rec
}

func tracedApp() *fiber.App {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/posts/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrBadGateway })
	return app
}

func TestTracingMiddleware_NamesSpanByRoute(t *testing.T) {
	rec := setupTracing(t)

	resp, err := tracedApp().Test(httptest.NewRequest(http.MethodGet, "/posts/welcome-post", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /posts/:slug", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("http.route", "/posts/:slug"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", 200))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracingMiddleware_ContinuesRemoteTrace(t *testing.T) {
	rec := setupTracing(t)
	req := httptest.NewRequest(http.MethodGet, "/posts/welcome-post", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	_, err := tracedApp().Test(req)
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext().TraceID().String())
}

func TestTracingMiddleware_ErrorsAndProbes(t *testing.T) {
	rec := setupTracing(t)
	app := tracedApp()

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Empty(t, rec.Ended(), "probes are not traced")

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
