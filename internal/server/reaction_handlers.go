package server

import (
	"context"
	"strings"

	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetReactions returns the like and dislike counts of a post
// @Summary Get reactions
// @Tags reactions
// @Produce json
// @Param postSlug query string true "Post slug"
// @Param userId query string false "User whose reaction is included"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /reactions [get]
func (s *Server) GetReactions(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("postSlug"))
	if err := validation.ValidateSlug(slug); err != nil {
		return respondError(c, err)
	}
	userID, err := parseUUIDQuery(c, "userId")
	if err != nil {
		return nil
	}
	if userID == nil {
		userID = sessionUserID(c)
	}

	summary, err := s.reactionService.GetSummary(c.UserContext(), slug, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// SetReaction likes or dislikes a post; repeating the current reaction
// removes it
// @Summary Set reaction
// @Tags reactions
// @Accept json
// @Produce json
// @Param request body validation.ReactionRequest true "Reaction"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /reactions [post]
func (s *Server) SetReaction(c *fiber.Ctx) error {
	var req validation.ReactionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	userID, err := s.reactor(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := s.reactionService.SetReaction(c.UserContext(), service.SetReactionInput{
		PostSlug:     req.PostSlug,
		UserID:       userID,
		ReactionType: req.ReactionType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// DeleteReaction removes the caller's reaction
// @Summary Delete reaction
// @Tags reactions
// @Produce json
// @Param postSlug query string true "Post slug"
// @Param userId query string false "User id when no session is present"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /reactions [delete]
func (s *Server) DeleteReaction(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("postSlug"))
	if err := validation.ValidateSlug(slug); err != nil {
		return respondError(c, err)
	}
	requested, err := parseUUIDQuery(c, "userId")
	if err != nil {
		return nil
	}

	userID, err := s.reactor(c, requested)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := s.reactionService.RemoveReaction(c.UserContext(), slug, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}

// reactor picks the user a reaction request acts for. A session wins and
// must agree with any explicit id; without one the explicit id has to name
// a stored user.
func (s *Server) reactor(c *fiber.Ctx, requested *uuid.UUID) (uuid.UUID, error) {
	if own := sessionUserID(c); own != nil {
		if requested != nil && *requested != *own {
			return uuid.Nil, models.NewForbiddenError("Cannot react on behalf of another user")
		}
		return *own, nil
	}
	if requested == nil {
		return uuid.Nil, models.NewValidationError("userId is required")
	}
	if err := s.userExists(c.UserContext(), *requested); err != nil {
		return uuid.Nil, err
	}
	return *requested, nil
}

func (s *Server) userExists(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if models.IsNotFound(err) {
			return models.NewValidationError("Unknown user")
		}
		return err
	}
	return nil
}
