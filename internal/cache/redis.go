// Package cache wraps Redis for cache-aside reads and connection setup.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folio/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// errorHook counts failed commands by name. redis.Nil is a miss, not a
// failure.
type errorHook struct{}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func countFailure(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(name).Inc()
	}
}

// NewClient builds a client for addr, which is either host:port or a
// redis:// URL. It does not contact the server.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	client.AddHook(errorHook{})
	return client, nil
}

// Connect builds a client and pings it. Callers treat an error as
// "run without Redis".
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client, err := NewClient(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	observability.Logger.Info("redis connected",
		slog.String("addr", client.Options().Addr), slog.Int("db", client.Options().DB))
	return client, nil
}
