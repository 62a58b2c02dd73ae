package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"

	"go.uber.org/zap"
)

// UserService — администрирование пользователей.
type UserService struct {
	repo UserRepo
}

func NewUserService(repo UserRepo) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение списка пользователей (service)")
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка получения пользователя", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, actor *Actor, id, role string) (*models.User, error) {
	log := logger.WithCtx(ctx)
	role = strings.ToLower(strings.TrimSpace(role))
	log.Info("Смена роли (service)", zap.String("user_id", id), zap.String("role", role))

	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if actor.UserID == id {
		log.Warn("Попытка сменить собственную роль", zap.String("user_id", id))
		return nil, ErrOwnRoleChange
	}

	u, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error("Ошибка смены роли", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (s *UserService) UserStats(ctx context.Context) (*models.UserStats, error) {
	counts, err := s.repo.CountByRole(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка подсчёта пользователей", zap.Error(err))
		return nil, err
	}

	st := &models.UserStats{
		AdminCount: counts[models.RoleAdmin],
		UserCount:  counts[models.RoleUser],
	}
	for _, n := range counts {
		st.TotalUsers += n
	}
	if st.TotalUsers > 0 {
		pct := float64(st.AdminCount) * 100 / float64(st.TotalUsers)
		st.AdminPercentage = math.Round(pct*100) / 100
	}
	return st, nil
}
