package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func writeWSError(conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(fiber.Map{"type": "error", "payload": fiber.Map{"error": msg}})
	_ = conn.WriteMessage(websocket.TextMessage, payload)
	_ = conn.Close()
}

// PostEventsHandler streams comment and reaction events for one post.
// Clients only listen; the connection ends when either side closes it.
func (s *Server) PostEventsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		slug := conn.Params("slug")
		if err := validation.ValidateSlug(slug); err != nil {
			writeWSError(conn, "invalid post slug")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		ok, err := s.items.Exists(ctx, slug)
		cancel()
		if err != nil || !ok {
			writeWSError(conn, "post not found")
			return
		}

		client, err := s.hub.Register(slug, conn)
		if err != nil {
			observability.Logger.Warn("websocket register failed",
				slog.String("slug", slug), slog.String("error", err.Error()))
			writeWSError(conn, err.Error())
			return
		}

		connected, _ := json.Marshal(notifications.Event{
			Type: "connected",
			Slug: slug,
			At:   time.Now().UTC(),
		})
		client.TrySend(connected)

		client.Serve()
	})
}
