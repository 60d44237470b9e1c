package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// BlogPostFilter narrows BlogPostRepository.List.
type BlogPostFilter struct {
	// Published filters on the published flag when non-nil.
	Published *bool
	Tag       string
	Limit     int
	Offset    int
}

// BlogPostRepository defines persistence operations for database blog posts.
type BlogPostRepository interface {
	// List returns one page of posts, newest first, and the total number of
	// posts matching the filter.
	List(ctx context.Context, filter BlogPostFilter) ([]models.BlogPost, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, post *models.BlogPost) error
}

type blogPostRepository struct {
	db      *gorm.DB
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewBlogPostRepository returns a new BlogPostRepository implementation.
func NewBlogPostRepository(db *gorm.DB, retrier *database.Retrier) BlogPostRepository {
	return &blogPostRepository{
		db:      db,
		retrier: retrier,
		log:     observability.NewRepoLogger("blog_posts"),
	}
}

type blogPostPage struct {
	posts []models.BlogPost
	total int64
}

func (r *blogPostRepository) filtered(ctx context.Context, filter BlogPostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.BlogPost{})
	if filter.Published != nil {
		q = q.Where("published = ?", *filter.Published)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		q = q.Where(`tags LIKE ? ESCAPE '\'`, jsonElementPattern(tag))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// jsonElementPattern matches a serializer:json string array containing
// value. The needle is encoded the way the serializer encodes it, then
// escaped for LIKE with a backslash escape character.
func jsonElementPattern(value string) string {
	needle, _ := json.Marshal(value)
	return "%" + likeEscaper.Replace(string(needle)) + "%"
}

func (r *blogPostRepository) List(ctx context.Context, filter BlogPostFilter) ([]models.BlogPost, int64, error) {
	limit := clampLimit(filter.Limit)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	page, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (blogPostPage, error) {
		var p blogPostPage
		if err := r.filtered(ctx, filter).Count(&p.total).Error; err != nil {
			return p, err
		}
		err := r.filtered(ctx, filter).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&p.posts).Error
		return p, err
	})
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if page.posts == nil {
		page.posts = []models.BlogPost{}
	}
	return page.posts, page.total, nil
}

func (r *blogPostRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.BlogPost, error) {
		var p models.BlogPost
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, mapError(err, "BlogPost", slug)
	}
	return post, nil
}

func (r *blogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	err := r.retrier.Do(ctx, database.ClassWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(post).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewValidationError(fmt.Sprintf("a post with slug %q already exists", post.Slug))
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("slug", post.Slug))
	return nil
}
