package server

import (
	"crypto/subtle"
	"errors"
	"time"

	"folio/internal/auth"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CallbackSecretHeader carries the secret shared with the OAuth front end.
const CallbackSecretHeader = "X-Auth-Callback-Secret"

// AuthCallback receives a provider profile and opens a session
// @Summary OAuth sign-in callback
// @Description Called by the OAuth front end after the provider confirmed the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Auth-Callback-Secret header string false "Shared callback secret"
// @Param request body validation.AuthCallbackRequest true "Provider profile"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/callback [post]
func (s *Server) AuthCallback(c *fiber.Ctx) error {
	if secret := s.config.AuthCallbackSecret; secret != "" {
		given := c.Get(CallbackSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			return respondError(c, models.NewForbiddenError("Invalid callback secret"))
		}
	}

	var req validation.AuthCallbackRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := s.authService.SignIn(c.UserContext(), service.SignInInput{
		Email:      req.Email,
		Name:       req.Name,
		AvatarURL:  req.Image,
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true, "data": result})
}

// GetSession returns the caller's session, or null when anonymous
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/session [get]
func (s *Server) GetSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": middleware.CurrentSession(c)})
}

// SignOut revokes the caller's token and clears the session cookie
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/signout [post]
func (s *Server) SignOut(c *fiber.Ctx) error {
	err := s.authService.SignOut(c.UserContext(), middleware.CurrentSession(c))
	message := "Signed out"
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRevocationUnavailable):
		message = "Signed out; the token stays valid until it expires"
	default:
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true, "message": message})
}
