package server

import (
	"folio/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

var builtinFeatures = []string{featureflags.Comments, featureflags.Reactions, featureflags.PageViews}

// GetFeatureFlags reports the configured flags and how they evaluate for
// the caller. The features map always covers the built-in features, using
// the same rule the route gates apply.
// @Summary Feature flags
// @Tags features
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	features := make(map[string]bool, len(builtinFeatures))
	for _, name := range builtinFeatures {
		features[name] = s.featureEnabled(c, name)
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(flagSubject(c)),
		"features":  features,
	})
}
