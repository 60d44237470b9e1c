package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware copies the request and trace ids from Fiber locals into
// the request context so the logger picks them up in deeper layers.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, observability.RequestIDKey, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// quietPaths are polled by probes and logged at debug level.
var quietPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// StructuredLogger logs one line per request. The level follows the
// response: 5xx and handler errors at error, 4xx at warn, the rest at info.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", len(c.Response().Body())),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}
		if email, ok := c.Locals("userEmail").(string); ok && email != "" {
			attrs = append(attrs, slog.String("user", email))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level, msg := requestLevel(c.Path(), status, err)
		observability.Logger.LogAttrs(c.UserContext(), level, msg, attrs...)
		return err
	}
}

func requestLevel(path string, status int, err error) (slog.Level, string) {
	switch {
	case err != nil && status < 500:
		return slog.LevelWarn, "request rejected"
	case err != nil || status >= 500:
		return slog.LevelError, "request failed"
	case status >= 400:
		return slog.LevelWarn, "request rejected"
	case quietPaths[path]:
		return slog.LevelDebug, "request processed"
	default:
		return slog.LevelInfo, "request processed"
	}
}
