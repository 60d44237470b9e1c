package server

import (
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RecordPageView counts a visit to a post, or to the site when no slug is
// given
// @Summary Record page view
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body validation.PageViewRequest false "Viewed post"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /views [post]
func (s *Server) RecordPageView(c *fiber.Ctx) error {
	var req validation.PageViewRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	err := s.analytics.RecordView(c.UserContext(), service.RecordViewInput{
		PostSlug:  req.PostSlug,
		UserID:    sessionUserID(c),
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true})
}

// GetAnalytics summarizes page views (admin)
// @Summary Page view analytics
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/analytics [get]
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	summary, err := s.analytics.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
