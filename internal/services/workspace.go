package services

import (
	"context"
	"errors"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"

	"go.uber.org/zap"
)

type WorkspaceService struct {
	repo repository.WorkspaceRepo
}

func NewWorkspaceService(repo repository.WorkspaceRepo) *WorkspaceService {
	return &WorkspaceService{repo: repo}
}

func (s *WorkspaceService) List(ctx context.Context) ([]*models.Workspace, error) {
	return s.repo.List(ctx)
}

func (s *WorkspaceService) Get(ctx context.Context, id string) (*models.Workspace, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *WorkspaceService) Rename(ctx context.Context, actor *Actor, id, name string) (*models.Workspace, error) {
	log := logger.WithCtx(ctx)
	log.Info("Переименование рабочего пространства", zap.String("workspace_id", id))

	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := ValidateWorkspaceName(name); err != nil {
		return nil, err
	}
	w, err := s.repo.Rename(ctx, id, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		log.Error("Ошибка переименования (repo)", zap.Error(err))
		return nil, err
	}
	return w, nil
}
