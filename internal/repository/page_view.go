package repository

import (
	"context"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

const topPostsLimit = 10

// PageViewRepository records visits and summarises them.
type PageViewRepository interface {
	Create(ctx context.Context, view *models.PageView) error
	Analytics(ctx context.Context) (*models.Analytics, error)
}

type pageViewRepository struct {
	db      *gorm.DB
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewPageViewRepository returns a new PageViewRepository implementation.
func NewPageViewRepository(db *gorm.DB, retrier *database.Retrier) PageViewRepository {
	return &pageViewRepository{
		db:      db,
		retrier: retrier,
		log:     observability.NewRepoLogger("page_views"),
	}
}

func (r *pageViewRepository) Create(ctx context.Context, view *models.PageView) error {
	err := r.retrier.Do(ctx, database.ClassWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(view).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *pageViewRepository) Analytics(ctx context.Context) (*models.Analytics, error) {
	summary, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.Analytics, error) {
		a := &models.Analytics{}
		db := r.db.WithContext(ctx)
		if err := db.Model(&models.PageView{}).Count(&a.TotalViews).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.PageView{}).Distinct("ip_hash").Count(&a.UniqueViews).Error; err != nil {
			return nil, err
		}
		err := db.Model(&models.PageView{}).
			Select("post_slug AS slug, COUNT(*) AS views").
			Where("post_slug IS NOT NULL").
			Group("post_slug").
			Order("views DESC, slug ASC").
			Limit(topPostsLimit).
			Scan(&a.TopPosts).Error
		return a, err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if summary.TopPosts == nil {
		summary.TopPosts = []models.PostViews{}
	}
	return summary, nil
}
