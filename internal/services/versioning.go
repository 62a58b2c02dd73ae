package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VersionInput — данные новой версии. Пустые поля берутся из текущей статьи.
type VersionInput struct {
	Title        string
	Content      string
	WorkspaceID  *string
	Attachments  []models.Attachment // nil — оставить текущие
	CreatedBy    string
	ChangeReason string
}

// CreateArticleVersion добавляет версию current+1 и переносит её поля в статью.
// При занятом номере перечитывает статью и повторяет с задержкой.
func (s *articleService) CreateArticleVersion(ctx context.Context, id string, in VersionInput) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	attempts := s.retry.attempts()

	for attempt := 1; ; attempt++ {
		a, err := s.GetArticle(ctx, id)
		if err != nil {
			return nil, err
		}

		v := nextVersion(a, in)
		updated, err := s.articles.AppendVersion(ctx, v)
		if err == nil {
			s.reindex(ctx, updated)
			log.Info("Создана версия статьи",
				zap.String("id", id), zap.Int("version", v.Version), zap.Int("attempt", attempt))
			return updated, nil
		}

		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrArticleNotFound
		case !errors.Is(err, repository.ErrVersionConflict):
			log.Error("Ошибка создания версии (repo)", zap.String("id", id), zap.Error(err))
			return nil, err
		case attempt >= attempts:
			log.Warn("Конфликт номера версии, попытки исчерпаны",
				zap.String("id", id), zap.Int("version", v.Version), zap.Int("attempts", attempts))
			return nil, ErrVersionConflict
		}

		log.Warn("Конфликт номера версии, повторяем",
			zap.String("id", id), zap.Int("version", v.Version), zap.Int("attempt", attempt))
		if err := s.retry.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

func nextVersion(a *models.Article, in VersionInput) *models.ArticleVersion {
	v := &models.ArticleVersion{
		ID:          uuid.NewString(),
		ArticleID:   a.ID,
		Version:     a.CurrentVersion + 1,
		Title:       in.Title,
		Content:     in.Content,
		WorkspaceID: in.WorkspaceID,
		Attachments: in.Attachments,
		CreatedBy:   in.CreatedBy,
	}
	if v.Title == "" {
		v.Title = a.Title
	}
	if v.Content == "" {
		v.Content = a.Content
	}
	if v.WorkspaceID == nil {
		v.WorkspaceID = a.WorkspaceID
	}
	if v.Attachments == nil {
		v.Attachments = append([]models.Attachment{}, a.Attachments...)
	}
	if v.CreatedBy == "" {
		v.CreatedBy = "system"
	}
	if r := strings.TrimSpace(in.ChangeReason); r != "" {
		v.ChangeReason = &r
	}
	return v
}

func (s *articleService) GetArticleVersions(ctx context.Context, id string) ([]*models.VersionSummary, error) {
	log := logger.WithCtx(ctx)
	log.Debug("Получение истории версий", zap.String("id", id))

	ok, err := s.articles.Exists(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("Ошибка проверки статьи (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrArticleNotFound
	}

	list, err := s.articles.ListVersions(ctx, id)
	if err != nil {
		log.Error("Ошибка получения версий (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *articleService) GetArticleVersion(ctx context.Context, id string, version int) (*models.ArticleVersion, error) {
	log := logger.WithCtx(ctx)
	log.Debug("Получение версии статьи", zap.String("id", id), zap.Int("version", version))

	if version < 1 {
		return nil, ErrInvalidVersion
	}
	v, err := s.articles.GetVersion(ctx, id, version)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		log.Error("Ошибка получения версии (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// RestoreArticleVersion создаёт новую версию с полями старой. История не переписывается.
func (s *articleService) RestoreArticleVersion(ctx context.Context, actor *Actor, id string, version int) (*models.RestoreResult, error) {
	log := logger.WithCtx(ctx)
	log.Info("Восстановление версии статьи", zap.String("id", id), zap.Int("version", version))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(a.UserID) {
		log.Warn("Попытка восстановить чужую статью", zap.String("id", id))
		return nil, ErrNotArticleOwner
	}

	old, err := s.GetArticleVersion(ctx, id, version)
	if err != nil {
		return nil, err
	}

	atts := old.Attachments
	if atts == nil {
		atts = []models.Attachment{}
	}
	updated, err := s.CreateArticleVersion(ctx, id, VersionInput{
		Title:        old.Title,
		Content:      old.Content,
		WorkspaceID:  old.WorkspaceID,
		Attachments:  atts,
		CreatedBy:    actor.DisplayName(),
		ChangeReason: fmt.Sprintf("Restored from version %d", version),
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ArticleRestored(ctx, updated, version, actor.DisplayName())
	log.Info("Версия восстановлена",
		zap.String("id", id), zap.Int("from", version), zap.Int("new_version", updated.CurrentVersion))

	return &models.RestoreResult{
		Success:             true,
		Message:             "Article restored from version",
		Article:             updated,
		RestoredFromVersion: version,
	}, nil
}
