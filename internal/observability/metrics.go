package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// DatabaseRetries counts retried database calls by operation class.
	DatabaseRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_database_retries_total",
		Help: "Total number of database call retries by operation class",
	}, []string{"class"})

	// ContentItems is the number of content items in the current snapshot.
	ContentItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "folio_content_items",
		Help: "Number of content items in the loaded collection",
	})

	// ContentReloads counts collection reloads by outcome.
	ContentReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_content_reloads_total",
		Help: "Total number of content collection reloads",
	}, []string{"result"})

	// ReactionsWritten counts reaction mutations by action.
	ReactionsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_reactions_written_total",
		Help: "Total number of reaction upserts and deletions",
	}, []string{"action"})

	// CommentsCreated counts created comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "folio_comments_created_total",
		Help: "Total number of comments created",
	})

	// ActiveWebSockets is the gauge of open live-event connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "folio_active_websockets",
		Help: "Number of open live-event websocket connections",
	})

	// WebSocketDrops counts live-event messages dropped before delivery.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_websocket_dropped_messages_total",
		Help: "Total number of websocket messages dropped by reason",
	}, []string{"reason"})
)
