package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// Limiter enforces fixed-window request limits backed by Redis.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewLimiter returns a limiter. Limits are not enforced for the
// development and test environments so local workflows are not throttled.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "test", "development":
		return &Limiter{rdb: rdb, enabled: false}
	}
	return &Limiter{rdb: rdb, enabled: true}
}

// Allow reports whether id may make another request against resource.
func (l *Limiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// Handler returns a Fiber middleware enforcing limit requests per window,
// keyed by the session email when present and the remote IP otherwise.
func (l *Limiter) Handler(limit int, window time.Duration, policy FailPolicy, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if email, ok := c.Locals("userEmail").(string); ok && email != "" {
			id = "user:" + email
		}

		resource := name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.Logger.WarnContext(c.UserContext(), "rate limit unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"success": false,
					"error":   "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
