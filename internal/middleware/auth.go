// Package middleware provides request-scoped Fiber middleware: logging
// context, sessions, rate limits, metrics, and tracing.
package middleware

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/access"
	"folio/internal/auth"
	"folio/internal/models"
	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "folio_session"

const sessionLocal = "session"

// SessionResolver turns a raw token into a session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*auth.Session, error)
}

// TokenFromRequest returns the bearer token, the session cookie or the
// token query parameter, in that order.
func TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// LoadSession attaches the caller's session when the request carries a
// valid token. Requests without one continue anonymously.
func LoadSession(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		session, err := resolver.ResolveSession(c.UserContext(), token)
		if err != nil || session == nil {
			if err != nil {
				observability.Logger.DebugContext(c.UserContext(), "ignoring session token",
					slog.String("error", err.Error()))
			}
			return c.Next()
		}

		c.Locals(sessionLocal, session)
		c.Locals("userEmail", session.Email)
		if session.UserID != nil {
			c.Locals("userID", *session.UserID)
		}
		c.SetUserContext(context.WithValue(c.UserContext(), observability.UserEmailKey, session.Email))
		return c.Next()
	}
}

// CurrentSession returns the session loaded for c, or nil.
func CurrentSession(c *fiber.Ctx) *auth.Session {
	s, _ := c.Locals(sessionLocal).(*auth.Session)
	return s
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(c *fiber.Ctx) error {
	if CurrentSession(c) == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Authentication required"))
	}
	return c.Next()
}

// RequireAdmin rejects anonymous requests with 401 and sessions the
// authorizer does not accept with 403.
func RequireAdmin(authorizer access.Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := CurrentSession(c)
		if s == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewAuthRequiredError("Authentication required"))
		}
		if !authorizer.CanModerate(c.UserContext(), s.Email) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
