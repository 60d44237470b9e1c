// Package service holds the application's use cases on top of the
// repositories and the content store.
package service

import (
	"context"

	"folio/internal/content"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/render"

	"go.opentelemetry.io/otel/attribute"
)

// RelatedLimit is how many related posts a post detail carries.
const RelatedLimit = 3

// CollectionSource provides the current content snapshot.
type CollectionSource interface {
	Collection(ctx context.Context) (*content.Collection, error)
}

// PostService answers queries over the file-based posts.
type PostService struct {
	store    CollectionSource
	renderer *render.Renderer
}

// ListPostsInput selects one page of posts.
type ListPostsInput struct {
	Page     int
	PageSize int
	Category string
	Tag      string
	Query    string
}

// PostDetail is a single post with everything its page needs.
type PostDetail struct {
	Post     *content.Item    `json:"post"`
	Rendered *render.Document `json:"rendered"`
	Previous *content.Item    `json:"previous"`
	Next     *content.Item    `json:"next"`
	Related  []*content.Item  `json:"related"`
}

func NewPostService(store CollectionSource, renderer *render.Renderer) *PostService {
	if renderer == nil {
		renderer = render.New(render.Options{})
	}
	return &PostService{store: store, renderer: renderer}
}

func (s *PostService) collection(ctx context.Context) (*content.Collection, error) {
	c, err := s.store.Collection(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return c, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (content.Page, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return content.Page{}, err
	}
	items := c.Find(content.Query{Category: in.Category, Tag: in.Tag, Text: in.Query})
	return content.Paginate(items, in.Page, in.PageSize), nil
}

func (s *PostService) GetPost(ctx context.Context, slug string) (*PostDetail, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := c.BySlug(slug)
	if !ok {
		return nil, models.NewNotFoundError("Post", slug)
	}

	_, span := observability.StartSpan(ctx, "render", "markdown", attribute.String("slug", slug))
	doc, err := s.renderer.Render(item.Body)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	prev, next := c.Adjacent(slug)
	return &PostDetail{
		Post:     item,
		Rendered: doc,
		Previous: prev,
		Next:     next,
		Related:  c.Related(item, RelatedLimit),
	}, nil
}

func (s *PostService) Featured(ctx context.Context) ([]*content.Item, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Featured(), nil
}

func (s *PostService) Recent(ctx context.Context, limit int) ([]*content.Item, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Recent(limit), nil
}

func (s *PostService) Categories(ctx context.Context) ([]string, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Categories(), nil
}

func (s *PostService) Tags(ctx context.Context) ([]string, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	return c.Tags(), nil
}

// Exists reports whether slug names a visible file-based post.
func (s *PostService) Exists(ctx context.Context, slug string) (bool, error) {
	c, err := s.collection(ctx)
	if err != nil {
		return false, err
	}
	_, ok := c.BySlug(slug)
	return ok, nil
}
