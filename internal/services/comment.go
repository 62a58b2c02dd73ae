package services

import (
	"context"
	"errors"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type CommentService struct {
	comments repository.CommentRepo
	articles repository.ArticleRepo
	notifier *Notifier
	policy   *bluemonday.Policy
}

func NewCommentService(comments repository.CommentRepo, articles repository.ArticleRepo, notifier *Notifier) *CommentService {
	if notifier == nil {
		notifier = NewNotifier(nil)
	}
	return &CommentService{comments: comments, articles: articles, notifier: notifier, policy: NewContentPolicy()}
}

func (s *CommentService) List(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if err := s.ensureArticle(ctx, articleID); err != nil {
		return nil, err
	}
	list, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения комментариев (repo)", zap.String("article_id", articleID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *CommentService) Create(ctx context.Context, actor *Actor, articleID, content string) (*models.Comment, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание комментария", zap.String("article_id", articleID))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	clean, err := s.clean(content)
	if err != nil {
		return nil, err
	}
	if err := s.ensureArticle(ctx, articleID); err != nil {
		return nil, err
	}

	uid := actor.UserID
	c, err := s.comments.Create(ctx, &models.Comment{
		ID:        uuid.NewString(),
		Content:   clean,
		Author:    actor.DisplayName(),
		ArticleID: articleID,
		UserID:    &uid,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		log.Error("Ошибка создания комментария (repo)", zap.Error(err))
		return nil, err
	}

	s.notifier.CommentAdded(ctx, articleID, actor.DisplayName())
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor *Actor, id, content string) (*models.Comment, error) {
	log := logger.WithCtx(ctx)
	log.Info("Изменение комментария", zap.String("comment_id", id))

	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	clean, err := s.clean(content)
	if err != nil {
		return nil, err
	}

	updated, err := s.comments.UpdateContent(ctx, id, clean)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		log.Error("Ошибка изменения комментария (repo)", zap.Error(err))
		return nil, err
	}

	s.notifier.CommentUpdated(ctx, c.ArticleID, actor.DisplayName())
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *Actor, id string) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление комментария", zap.String("comment_id", id))

	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		log.Error("Ошибка удаления комментария (repo)", zap.Error(err))
		return err
	}

	s.notifier.CommentDeleted(ctx, c.ArticleID, actor.DisplayName())
	return nil
}

// owned загружает комментарий и проверяет, что actor его автор или админ.
func (s *CommentService) owned(ctx context.Context, actor *Actor, id string) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrTokenRequired
	}
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if !actor.canModify(c.UserID) {
		logger.WithCtx(ctx).Warn("Попытка изменить чужой комментарий", zap.String("comment_id", id))
		return nil, ErrNotCommentOwner
	}
	return c, nil
}

func (s *CommentService) clean(content string) (string, error) {
	if err := ValidateCommentInput(content); err != nil {
		return "", err
	}
	safe := strings.TrimSpace(s.policy.Sanitize(content))
	if safe == "" {
		return "", ErrCommentContentRequired
	}
	return safe, nil
}

func (s *CommentService) ensureArticle(ctx context.Context, id string) error {
	ok, err := s.articles.Exists(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if !ok {
		return ErrArticleNotFound
	}
	return nil
}
