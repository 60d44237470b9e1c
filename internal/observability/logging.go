// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. Configure replaces it once
// the environment is known.
var Logger = NewLogger("development")

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys picked up by the context-aware handler.
const (
	RequestIDKey LogContextKey = "request_id"
	UserEmailKey LogContextKey = "user_email"
	TraceIDKey   LogContextKey = "trace_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if email, ok := ctx.Value(UserEmailKey).(string); ok && email != "" {
		r.AddAttrs(slog.String("user_email", email))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds a JSON logger for production and a text logger elsewhere.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// Configure installs the logger for env as both Logger and slog's default.
func Configure(env string) *slog.Logger {
	Logger = NewLogger(env)
	slog.SetDefault(Logger)
	return Logger
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table  string
	logger *slog.Logger
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return Logger
}

// LogWrite records a successful mutation.
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, attrs ...any) {
	base := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	l.log().InfoContext(ctx, "repository write", append(base, attrs...)...)
}

// LogError records a failed repository call.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.log().ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
