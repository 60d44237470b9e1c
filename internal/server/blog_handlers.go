package server

import (
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetBlogPosts lists database blog posts
// @Summary List blog posts
// @Description Published posts, newest first. Admins may pass published=false to include drafts.
// @Tags blog
// @Produce json
// @Param published query bool false "Only published posts (default true)"
// @Param tag query string false "Tag"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /blog [get]
func (s *Server) GetBlogPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)
	filter := repository.BlogPostFilter{
		Tag:    c.Query("tag"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if c.Query("published") != "false" || !s.isAdmin(c) {
		published := true
		filter.Published = &published
	}

	posts, total, err := s.blogService.ListPosts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": posts, "total": total})
}

// GetBlogPost returns one blog post with media links embedded
// @Summary Get blog post
// @Tags blog
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /blog/{slug} [get]
func (s *Server) GetBlogPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := s.blogService.GetPost(c.UserContext(), slug)
	if err != nil {
		return respondError(c, err)
	}
	if !post.Published && !s.isAdmin(c) {
		return respondError(c, models.NewNotFoundError("BlogPost", slug))
	}
	return c.JSON(fiber.Map{"success": true, "data": post})
}

// CreateBlogPost stores a new blog post (admin)
// @Summary Create blog post
// @Tags blog
// @Accept json
// @Produce json
// @Param request body validation.BlogPostRequest true "Post"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /blog [post]
func (s *Server) CreateBlogPost(c *fiber.Ctx) error {
	var req validation.BlogPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	session := middleware.CurrentSession(c)
	if session == nil || session.UserID == nil {
		return respondError(c, models.NewAuthRequiredError("A signed-in user is required"))
	}

	post, err := s.blogService.CreatePost(c.UserContext(), service.CreateBlogPostInput{
		AuthorID:      *session.UserID,
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Tags:          req.Tags,
		Published:     req.Published,
		FeaturedImage: req.FeaturedImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": post})
}

// GetProjects lists projects
// @Summary List projects
// @Tags projects
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /projects [get]
func (s *Server) GetProjects(c *fiber.Ctx) error {
	projects, err := s.projectService.ListProjects(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": projects})
}

// GetProject returns one project
// @Summary Get project
// @Tags projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{slug} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	project, err := s.projectService.GetProject(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": project})
}
