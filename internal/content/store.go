package content

import (
	"context"
	"log/slog"
	"sync/atomic"

	"folio/internal/observability"

	"golang.org/x/sync/singleflight"
)

// Source produces a fresh collection.
type Source interface {
	Load(ctx context.Context) (*Collection, error)
}

// Store caches the current collection and swaps it atomically on reload.
// Concurrent reloads share one load.
type Store struct {
	source  Source
	current atomic.Pointer[Collection]
	stale   atomic.Bool
	group   singleflight.Group
	logger  *slog.Logger
}

// NewStore returns an empty store; the first Collection call loads.
func NewStore(source Source) *Store {
	return &Store{
		source: source,
		logger: observability.Logger.With(slog.String("component", "content_store")),
	}
}

// Collection returns the cached snapshot, loading it first if the store is
// empty or has been invalidated. When a reload after invalidation fails,
// the previous snapshot keeps being served.
func (s *Store) Collection(ctx context.Context) (*Collection, error) {
	c := s.current.Load()
	if c != nil && !s.stale.Load() {
		return c, nil
	}

	fresh, err := s.Reload(ctx)
	if err != nil {
		if c != nil {
			s.logger.WarnContext(ctx, "serving previous content snapshot", slog.String("error", err.Error()))
			return c, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Invalidate marks the snapshot stale so the next read reloads.
func (s *Store) Invalidate() {
	s.stale.Store(true)
}

// Reload loads a new snapshot and installs it. Concurrent callers share one
// load, which is detached from the cancellation of whichever caller
// started it.
func (s *Store) Reload(ctx context.Context) (*Collection, error) {
	v, err, _ := s.group.Do("reload", func() (interface{}, error) {
		ctx, span := observability.StartSpan(context.WithoutCancel(ctx), "content", "reload")
		s.stale.Store(false)
		c, err := s.source.Load(ctx)
		observability.EndSpan(span, err)
		if err != nil {
			s.stale.Store(true)
			observability.ContentReloads.WithLabelValues("error").Inc()
			return nil, err
		}
		s.current.Store(c)
		observability.ContentReloads.WithLabelValues("ok").Inc()
		observability.ContentItems.Set(float64(c.Len()))
		s.logger.InfoContext(ctx, "content loaded",
			slog.Int("items", c.Len()),
			slog.Int("skipped", len(c.Skipped())),
		)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Collection), nil
}
