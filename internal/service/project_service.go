package service

import (
	"context"

	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/repository"
)

type ProjectService struct {
	projects repository.ProjectRepository
}

func NewProjectService(projects repository.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	project.Content = render.ProcessMedia(project.Content)
	return project, nil
}

func (s *ProjectService) Exists(ctx context.Context, slug string) (bool, error) {
	if _, err := s.projects.GetBySlug(ctx, slug); err != nil {
		if models.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
