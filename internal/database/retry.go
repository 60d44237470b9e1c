package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"folio/internal/models"
	"folio/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// OpClass describes whether a database call may be repeated safely.
type OpClass int

const (
	// ClassRead is a query without side effects.
	ClassRead OpClass = iota
	// ClassIdempotentWrite converges to the same state when repeated
	// (upserts keyed by a natural key, deletes, flag sets).
	ClassIdempotentWrite
	// ClassWrite inserts a new row each time and is never repeated.
	ClassWrite
)

func (c OpClass) String() string {
	switch c {
	case ClassRead:
		return "read"
	case ClassIdempotentWrite:
		return "idempotent_write"
	default:
		return "write"
	}
}

// Retrier repeats failed database calls with exponential backoff.
// A nil *Retrier runs every call exactly once.
type Retrier struct {
	attempts    uint
	initial     time.Duration
	maxInterval time.Duration
	jitter      float64
}

// NewRetrier returns a Retrier making at most attempts tries per call,
// waiting initial before the second try and doubling afterwards.
func NewRetrier(attempts int, initial time.Duration) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	if initial <= 0 {
		initial = time.Second
	}
	return &Retrier{
		attempts:    uint(attempts),
		initial:     initial,
		maxInterval: 30 * initial,
		jitter:      backoff.DefaultRandomizationFactor,
	}
}

// WithoutJitter makes the delays deterministic.
func (r *Retrier) WithoutJitter() *Retrier {
	cp := *r
	cp.jitter = 0
	return &cp
}

// Do runs fn, retrying transient failures when class allows it.
func (r *Retrier) Do(ctx context.Context, class OpClass, fn func(ctx context.Context) error) error {
	_, err := Query(ctx, r, class, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Query is Do for calls that return a value.
func Query[T any](ctx context.Context, r *Retrier, class OpClass, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	if r == nil || r.attempts <= 1 || class == ClassWrite {
		return fn(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxInterval = r.maxInterval
	b.RandomizationFactor = r.jitter
	b.Multiplier = 2

	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			observability.DatabaseRetries.WithLabelValues(class.String()).Inc()
			observability.Logger.WarnContext(ctx, "retrying database call",
				slog.String("class", class.String()),
				slog.Duration("next", next),
				slog.String("error", err.Error()),
			)
		}),
	)
}

// Retryable reports whether err may be transient. Missing rows, domain
// errors, constraint violations and cancellation are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		// Class 22 is data exceptions, 23 integrity violations, 42 syntax or access.
		switch pgErr.Code[:2] {
		case "22", "23", "42":
			return false
		}
	}
	return true
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
