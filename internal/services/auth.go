package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"
	"wikihub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserRepo interface {
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

type AuthService struct {
	repo      UserRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo UserRepo, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	log.Info("Регистрация пользователя (service)", zap.String("email", email))

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	taken, err := s.repo.IsEmailTaken(ctx, email)
	if err != nil {
		log.Error("Ошибка проверки email", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	u, err := s.createUser(ctx, email, req.Password, name, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// CreateUser заводит пользователя с заданной ролью без выдачи токена (cmd/createadmin).
func (s *AuthService) CreateUser(ctx context.Context, email, password, name, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	return s.createUser(ctx, email, password, strings.TrimSpace(name), role)
}

func (s *AuthService) createUser(ctx context.Context, email, password, name, role string) (*models.User, error) {
	log := logger.WithCtx(ctx)

	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		log.Error("Ошибка создания пользователя", zap.Error(err))
		return nil, err
	}
	log.Info("Пользователь зарегистрирован (service)", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	log.Info("Попытка входа (service)", zap.String("email", email))

	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Пользователь не найден (service)", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		log.Error("Ошибка получения пользователя", zap.Error(err))
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, u.PasswordHash) {
		log.Warn("Неверный пароль (service)", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(s.jwtSecret, u, s.tokenTTL)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка генерации access-токена", zap.Error(err))
		return nil, err
	}
	u.PasswordHash = ""
	return &models.AuthResponse{User: u, Token: token}, nil
}

// Profile — текущий пользователь по id из токена.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка получения профиля", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// VerifyToken разбирает access-токен и возвращает автора запроса.
func (s *AuthService) VerifyToken(token string) (*Actor, error) {
	claims, err := utils.ParseToken(s.jwtSecret, token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return &Actor{UserID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}
