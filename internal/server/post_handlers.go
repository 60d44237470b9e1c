package server

import (
	"folio/internal/content"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts lists file-based posts
// @Summary List posts
// @Description One page of posts, newest first, optionally filtered by category, tag or text.
// @Tags posts
// @Produce json
// @Param page query int false "Page, from 1"
// @Param pageSize query int false "Posts per page, at most 100"
// @Param category query string false "Category"
// @Param tag query string false "Tag"
// @Param q query string false "Search text"
// @Success 200 {object} map[string]interface{}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:     c.QueryInt("page", 1),
		PageSize: min(c.QueryInt("pageSize", content.DefaultPageSize), maxPaginationLimit),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}

// GetPost returns one post with its rendered body and neighbours
// @Summary Get post
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	detail, err := s.postService.GetPost(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": detail})
}

// GetCategories lists every category in use
// @Summary List categories
// @Tags posts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /posts/categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.postService.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetTags lists every tag in use
// @Summary List tags
// @Tags posts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /posts/tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.postService.Tags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": tags})
}

// GetFeaturedPosts lists featured posts
// @Summary List featured posts
// @Tags posts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /posts/featured [get]
func (s *Server) GetFeaturedPosts(c *fiber.Ctx) error {
	featured, err := s.postService.Featured(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": featured})
}
