package services

import (
	"context"
	"errors"
	"strings"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"
	"wikihub/internal/storage"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

type ArticleService interface {
	ListArticles(ctx context.Context, workspaceID, search string) ([]*models.ArticleSummary, error)
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetArticleWithComments(ctx context.Context, id string) (*models.ArticleWithComments, error)
	CreateArticle(ctx context.Context, actor *Actor, req models.CreateArticleRequest) (*models.Article, error)
	UpdateArticle(ctx context.Context, actor *Actor, id string, req models.UpdateArticleRequest) (*models.Article, error)
	DeleteArticle(ctx context.Context, actor *Actor, id string) error

	CreateArticleVersion(ctx context.Context, id string, in VersionInput) (*models.Article, error)
	GetArticleVersions(ctx context.Context, id string) ([]*models.VersionSummary, error)
	GetArticleVersion(ctx context.Context, id string, version int) (*models.ArticleVersion, error)
	RestoreArticleVersion(ctx context.Context, actor *Actor, id string, version int) (*models.RestoreResult, error)

	AddAttachments(ctx context.Context, actor *Actor, id string, files []models.Upload) (*models.Article, error)
	RemoveAttachment(ctx context.Context, actor *Actor, id, attachmentID string) (*models.Article, error)
}

// ArticleIndex — полнотекстовый индекс статей (Meilisearch).
type ArticleIndex interface {
	Healthy() bool
	IndexArticle(ctx context.Context, a *models.Article) error
	RemoveArticle(ctx context.Context, id string) error
	SearchArticleIDs(ctx context.Context, query, workspaceID string, limit int) ([]string, error)
}

type ArticleDeps struct {
	Articles   repository.ArticleRepo
	Workspaces repository.WorkspaceRepo
	Comments   repository.CommentRepo
	Blobs      storage.Blobs
	Notifier   *Notifier
	Index      ArticleIndex // может быть nil
	Limits     UploadLimits
	Retry      RetryPolicy
}

type articleService struct {
	articles   repository.ArticleRepo
	workspaces repository.WorkspaceRepo
	comments   repository.CommentRepo
	blobs      storage.Blobs
	notifier   *Notifier
	index      ArticleIndex
	limits     UploadLimits
	retry      RetryPolicy
	policy     *bluemonday.Policy
}

func NewArticleService(d ArticleDeps) ArticleService {
	if d.Notifier == nil {
		d.Notifier = NewNotifier(nil)
	}
	if d.Limits == (UploadLimits{}) {
		d.Limits = DefaultUploadLimits()
	}
	if d.Retry == (RetryPolicy{}) {
		d.Retry = DefaultRetryPolicy()
	}
	return &articleService{
		articles:   d.Articles,
		workspaces: d.Workspaces,
		comments:   d.Comments,
		blobs:      d.Blobs,
		notifier:   d.Notifier,
		index:      d.Index,
		limits:     d.Limits,
		retry:      d.Retry,
		policy:     NewContentPolicy(),
	}
}

// NewContentPolicy — политика очистки HTML статей и комментариев.
func NewContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return p
}

func (s *articleService) ListArticles(ctx context.Context, workspaceID, search string) ([]*models.ArticleSummary, error) {
	log := logger.WithCtx(ctx)
	search = strings.TrimSpace(search)
	log.Debug("Получение списка статей", zap.String("workspace_id", workspaceID), zap.String("search", search))

	filter := models.ArticleFilter{WorkspaceID: workspaceID, Search: search}

	if search != "" && s.index != nil && s.index.Healthy() {
		ids, err := s.index.SearchArticleIDs(ctx, search, workspaceID, 100)
		if err == nil {
			list, err := s.articles.List(ctx, models.ArticleFilter{WorkspaceID: workspaceID, IDs: ids})
			if err != nil {
				log.Error("Ошибка получения статей по результатам поиска (repo)", zap.Error(err))
				return nil, err
			}
			return orderByIDs(list, ids), nil
		}
		log.Warn("Поиск Meilisearch не удался, используем Postgres", zap.Error(err))
	}

	list, err := s.articles.List(ctx, filter)
	if err != nil {
		log.Error("Ошибка получения списка статей (repo)", zap.Error(err))
		return nil, err
	}

	log.Debug("Список статей получен", zap.Int("count", len(list)))
	return list, nil
}

func orderByIDs(list []*models.ArticleSummary, ids []string) []*models.ArticleSummary {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	out := make([]*models.ArticleSummary, len(ids))
	n := 0
	for _, a := range list {
		if i, ok := pos[a.ID]; ok && out[i] == nil {
			out[i] = a
			n++
		}
	}
	res := make([]*models.ArticleSummary, 0, n)
	for _, a := range out {
		if a != nil {
			res = append(res, a)
		}
	}
	return res
}

func (s *articleService) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Debug("Получение статьи по ID", zap.String("id", id))

	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Статья не найдена", zap.String("id", id))
			return nil, ErrArticleNotFound
		}
		log.Error("Ошибка получения статьи (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *articleService) GetArticleWithComments(ctx context.Context, id string) (*models.ArticleWithComments, error) {
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByArticle(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения комментариев (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &models.ArticleWithComments{Article: a, Comments: comments}, nil
}

func (s *articleService) CreateArticle(ctx context.Context, actor *Actor, req models.CreateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание статьи", zap.String("title", strings.TrimSpace(req.Title)))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	title, content, err := s.cleanInput(req.Title, req.Content)
	if err != nil {
		log.Warn("Валидация не пройдена", zap.Error(err))
		return nil, err
	}

	wsID := models.DefaultWorkspaceID
	if req.WorkspaceID != nil && strings.TrimSpace(*req.WorkspaceID) != "" {
		wsID = strings.TrimSpace(*req.WorkspaceID)
	}
	if err := s.ensureWorkspace(ctx, wsID); err != nil {
		return nil, err
	}

	ownerID := actor.UserID
	a := &models.Article{
		ID:             uuid.NewString(),
		Title:          title,
		Content:        content,
		WorkspaceID:    &wsID,
		Attachments:    []models.Attachment{},
		CurrentVersion: 1,
		UserID:         &ownerID,
	}
	reason := "Initial version"
	v := &models.ArticleVersion{
		ID:           uuid.NewString(),
		ArticleID:    a.ID,
		Version:      1,
		Title:        a.Title,
		Content:      a.Content,
		WorkspaceID:  a.WorkspaceID,
		Attachments:  []models.Attachment{},
		CreatedBy:    actor.DisplayName(),
		ChangeReason: &reason,
	}

	created, err := s.articles.CreateWithFirstVersion(ctx, a, v)
	if err != nil {
		log.Error("Ошибка создания статьи (repo)", zap.Error(err))
		return nil, err
	}

	s.reindex(ctx, created)
	log.Info("Статья создана", zap.String("id", created.ID), zap.String("workspace_id", wsID))
	return created, nil
}

func (s *articleService) UpdateArticle(ctx context.Context, actor *Actor, id string, req models.UpdateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление статьи", zap.String("id", id), zap.String("title", strings.TrimSpace(req.Title)))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(a.UserID) {
		log.Warn("Попытка изменить чужую статью", zap.String("id", id))
		return nil, ErrNotArticleOwner
	}

	title, content, err := s.cleanInput(req.Title, req.Content)
	if err != nil {
		log.Warn("Валидация не пройдена", zap.Error(err))
		return nil, err
	}

	var wsID *string
	if req.WorkspaceID != nil && strings.TrimSpace(*req.WorkspaceID) != "" {
		v := strings.TrimSpace(*req.WorkspaceID)
		if err := s.ensureWorkspace(ctx, v); err != nil {
			return nil, err
		}
		wsID = &v
	}

	updated, err := s.CreateArticleVersion(ctx, id, VersionInput{
		Title:        title,
		Content:      content,
		WorkspaceID:  wsID,
		CreatedBy:    actor.DisplayName(),
		ChangeReason: req.ChangeReason,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ArticleUpdated(ctx, updated, actor.DisplayName())
	log.Info("Статья обновлена", zap.String("id", id), zap.Int("version", updated.CurrentVersion))
	return updated, nil
}

func (s *articleService) DeleteArticle(ctx context.Context, actor *Actor, id string) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление статьи", zap.String("id", id))

	if actor == nil {
		return ErrTokenRequired
	}
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canModify(a.UserID) {
		log.Warn("Попытка удалить чужую статью", zap.String("id", id))
		return ErrNotArticleOwner
	}

	files, err := s.articles.AttachmentFilenames(ctx, id)
	if err != nil {
		log.Error("Ошибка получения файлов статьи (repo)", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrArticleNotFound
		}
		log.Error("Ошибка удаления статьи (repo)", zap.String("id", id), zap.Error(err))
		return err
	}

	s.deleteBlobs(ctx, files)
	if s.index != nil {
		if err := s.index.RemoveArticle(ctx, id); err != nil {
			log.Warn("Не удалось удалить статью из индекса", zap.String("id", id), zap.Error(err))
		}
	}

	log.Info("Статья удалена", zap.String("id", id), zap.Int("files", len(files)))
	return nil
}

// cleanInput проверяет заголовок и контент и очищает HTML.
func (s *articleService) cleanInput(title, content string) (string, string, error) {
	if err := ValidateArticleInput(title, content); err != nil {
		return "", "", err
	}
	safe := s.policy.Sanitize(content)
	if strings.TrimSpace(safe) == "" {
		return "", "", ErrContentRequired
	}
	return strings.TrimSpace(title), safe, nil
}

func (s *articleService) ensureWorkspace(ctx context.Context, id string) error {
	if _, err := s.workspaces.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Warn("Рабочее пространство не найдено", zap.String("workspace_id", id))
			return ErrWorkspaceNotFound
		}
		return err
	}
	return nil
}

func (s *articleService) reindex(ctx context.Context, a *models.Article) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexArticle(ctx, a); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось проиндексировать статью", zap.String("id", a.ID), zap.Error(err))
	}
}

// deleteBlobs удаляет файлы; ошибки оставляем чистильщику.
func (s *articleService) deleteBlobs(ctx context.Context, names []string) {
	ctx = context.WithoutCancel(ctx)
	for _, name := range names {
		if err := s.blobs.Delete(ctx, name); err != nil {
			logger.WithCtx(ctx).Warn("Не удалось удалить файл", zap.String("file", name), zap.Error(err))
		}
	}
}
