package server

import (
	"strings"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetComments lists the visible comments of a post
// @Summary List comments
// @Tags comments
// @Produce json
// @Param postSlug query string true "Post slug"
// @Param threaded query bool false "Nest replies under their parents"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("postSlug"))
	if err := validation.ValidateSlug(slug); err != nil {
		return respondError(c, err)
	}

	var (
		comments []*models.Comment
		err      error
	)
	if c.QueryBool("threaded", false) {
		comments, err = s.commentService.ListThreaded(c.UserContext(), slug)
	} else {
		comments, err = s.commentService.ListComments(c.UserContext(), slug)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": comments})
}

// CreateComment adds a comment as the signed-in user
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Param request body validation.CommentRequest true "Comment"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req validation.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	userID := uuid.Nil
	if id := sessionUserID(c); id != nil {
		userID = *id
	}

	created, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		PostSlug: req.PostSlug,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": created})
}

// UpdateCommentVisibility hides or restores a comment (admin)
// @Summary Set comment visibility
// @Tags comments
// @Accept json
// @Produce json
// @Param request body validation.VisibilityRequest true "Visibility"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [put]
func (s *Server) UpdateCommentVisibility(c *fiber.Ctx) error {
	var req validation.VisibilityRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	err := s.commentService.SetVisibility(c.UserContext(), service.SetVisibilityInput{
		ActorEmail: middleware.CurrentSession(c).Email,
		CommentID:  req.CommentID,
		Hidden:     *req.IsHidden,
	})
	if err != nil {
		return respondError(c, err)
	}

	message := "Comment restored"
	if *req.IsHidden {
		message = "Comment hidden"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}
