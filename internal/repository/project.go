package repository

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// ProjectRepository defines persistence operations for portfolio projects.
type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
}

type projectRepository struct {
	db      *gorm.DB
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB, retrier *database.Retrier) ProjectRepository {
	return &projectRepository{
		db:      db,
		retrier: retrier,
		log:     observability.NewRepoLogger("projects"),
	}
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	projects, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) ([]models.Project, error) {
		var out []models.Project
		err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
		return out, err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.Project, error) {
		var p models.Project
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, mapError(err, "Project", slug)
	}
	return project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.retrier.Do(ctx, database.ClassWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(project).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewValidationError(fmt.Sprintf("a project with slug %q already exists", project.Slug))
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("slug", project.Slug))
	return nil
}
