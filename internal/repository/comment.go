package repository

import (
	"context"
	"log/slog"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListVisible returns the non-hidden comments of slug in creation
	// order with their authors preloaded.
	ListVisible(ctx context.Context, slug string) ([]*models.Comment, error)
	SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error
}

type commentRepository struct {
	db      *gorm.DB
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB, retrier *database.Retrier) CommentRepository {
	return &commentRepository{
		db:      db,
		retrier: retrier,
		log:     observability.NewRepoLogger("comments"),
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.retrier.Do(ctx, database.ClassWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(comment).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create",
		slog.String("comment_id", comment.ID.String()),
		slog.String("post_slug", comment.PostSlug),
	)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.Comment, error) {
		var c models.Comment
		if err := r.db.WithContext(ctx).Preload("User").First(&c, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &c, nil
	})
	if err != nil {
		return nil, mapError(err, "Comment", id)
	}
	return comment, nil
}

func (r *commentRepository) ListVisible(ctx context.Context, slug string) ([]*models.Comment, error) {
	comments, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) ([]*models.Comment, error) {
		var out []*models.Comment
		err := r.db.WithContext(ctx).
			Preload("User").
			Where("post_slug = ? AND is_hidden = ?", slug, false).
			Order("created_at ASC").
			Find(&out).Error
		return out, err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (r *commentRepository) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error {
	err := r.retrier.Do(ctx, database.ClassIdempotentWrite, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("is_hidden", hidden)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return mapError(err, "Comment", id)
	}
	r.log.LogWrite(ctx, "set_hidden",
		slog.String("comment_id", id.String()),
		slog.Bool("hidden", hidden),
	)
	return nil
}
