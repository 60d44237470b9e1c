// Package bootstrap opens the runtime connections shared by the server and
// the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// RequireRedis fails initialization when Redis cannot be reached.
	// Otherwise the runtime continues with a nil client.
	RequireRedis bool
	// EnsureAdmins creates a user row for every configured admin email in
	// development, so admin-only routes can be tried before any sign-in.
	EnsureAdmins bool
}

// Runtime holds the shared connections.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to DB and Redis.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rdb, err := cache.Connect(pingCtx, cfg.RedisURL)
	if err != nil {
		if opts.RequireRedis {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		observability.Logger.Warn("redis unavailable, continuing without it",
			slog.String("error", err.Error()))
		rdb = nil
	}

	rt := &Runtime{DB: db, Redis: rdb}
	if opts.EnsureAdmins {
		if err := ensureDevAdmins(ctx, cfg, db); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to bootstrap development admins: %w", err)
		}
	}
	return rt, nil
}

// Close releases both connections, logging failures.
func (rt *Runtime) Close() {
	if sqlDB, err := rt.DB.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			observability.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}
}

func ensureDevAdmins(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	users := repository.NewUserRepository(db, nil, database.NewRetrier(cfg.DBRetryAttempts, time.Duration(cfg.DBRetryInitialMS)*time.Millisecond))
	for _, email := range cfg.AdminEmailList() {
		if _, err := users.GetByEmail(ctx, email); err == nil {
			continue
		} else if !models.IsNotFound(err) {
			return err
		}
		user, err := users.UpsertByEmail(ctx, &models.User{
			Email:    email,
			Name:     strings.SplitN(email, "@", 2)[0],
			Provider: "bootstrap",
		})
		if err != nil {
			return err
		}
		observability.Logger.Info("development admin ensured",
			slog.String("email", email), slog.String("user_id", user.ID.String()))
	}
	return nil
}
