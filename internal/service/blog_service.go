package service

import (
	"context"
	"strings"

	"folio/internal/frontmatter"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/repository"

	"github.com/google/uuid"
)

// BlogService manages database-backed blog posts.
type BlogService struct {
	posts repository.BlogPostRepository
}

type CreateBlogPostInput struct {
	AuthorID      uuid.UUID
	Title         string
	Content       string
	Excerpt       string
	Tags          []string
	Published     bool
	FeaturedImage string
}

func NewBlogService(posts repository.BlogPostRepository) *BlogService {
	return &BlogService{posts: posts}
}

func (s *BlogService) ListPosts(ctx context.Context, filter repository.BlogPostFilter) ([]models.BlogPost, int64, error) {
	return s.posts.List(ctx, filter)
}

// GetPost returns the post with YouTube links in its content replaced by
// embeds.
func (s *BlogService) GetPost(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	post.Content = render.ProcessMedia(post.Content)
	return post, nil
}

// CreatePost derives the slug from the title and, when missing, the excerpt
// from the content.
func (s *BlogService) CreatePost(ctx context.Context, in CreateBlogPostInput) (*models.BlogPost, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	slug := frontmatter.Slugify(title)
	if slug == "" {
		return nil, models.NewValidationError("Title must contain letters or digits")
	}

	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = render.ExtractExcerpt(in.Content, render.DefaultExcerptLength)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	post := &models.BlogPost{
		Title:         title,
		Slug:          slug,
		Content:       in.Content,
		Excerpt:       excerpt,
		AuthorID:      in.AuthorID,
		Published:     in.Published,
		Tags:          tags,
		FeaturedImage: in.FeaturedImage,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Exists reports whether slug names a published database post.
func (s *BlogService) Exists(ctx context.Context, slug string) (bool, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if models.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return post.Published, nil
}
