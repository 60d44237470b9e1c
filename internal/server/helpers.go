package server

import (
	"errors"
	"log/slog"
	"strings"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	status := appErr.Status()
	if status >= fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", appErr.Error()),
		)
	}
	return models.RespondWithError(c, status, appErr)
}

// parseBody decodes the request body into v, writing a 400 on failure.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// parseUUIDQuery reads an optional uuid query parameter. A present but
// malformed value writes a 400 and returns errResponseWritten.
func parseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name))
		return nil, errResponseWritten
	}
	return &id, nil
}

// sessionUserID returns the stored user id of the caller, if any.
func sessionUserID(c *fiber.Ctx) *uuid.UUID {
	if s := middleware.CurrentSession(c); s != nil && s.UserID != nil {
		id := *s.UserID
		return &id
	}
	return nil
}

// isAdmin reports whether the caller's session may moderate.
func (s *Server) isAdmin(c *fiber.Ctx) bool {
	session := middleware.CurrentSession(c)
	return session != nil && s.authorizer.CanModerate(c.UserContext(), session.Email)
}

// flagSubject is the rollout key for feature flags: the session email,
// falling back to the client IP.
func flagSubject(c *fiber.Ctx) string {
	if s := middleware.CurrentSession(c); s != nil {
		return s.Email
	}
	return c.IP()
}

// featureEnabled treats a server without a flag manager as fully enabled.
func (s *Server) featureEnabled(c *fiber.Ctx, name string) bool {
	if s.featureFlags == nil {
		return true
	}
	return s.featureFlags.Enabled(name, flagSubject(c))
}

// requireFeature answers 404 while the named feature is switched off.
func (s *Server) requireFeature(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureEnabled(c, name) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", name))
		}
		return c.Next()
	}
}

// requireUpgrade rejects plain HTTP requests on websocket routes.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{
		Success: false,
		Error:   "Websocket upgrade required",
		Code:    models.CodeValidation,
	})
}
