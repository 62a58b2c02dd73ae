package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"
	"wikihub/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddAttachments сначала пишет файлы, потом одним UPDATE добавляет метаданные.
// При любой ошибке только что записанные файлы удаляются.
func (s *articleService) AddAttachments(ctx context.Context, actor *Actor, id string, files []models.Upload) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Загрузка вложений", zap.String("id", id), zap.Int("files", len(files)))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	if err := ValidateAttachmentFiles(files, s.limits); err != nil {
		log.Warn("Валидация вложений не пройдена", zap.Error(err))
		return nil, err
	}
	if _, err := s.GetArticle(ctx, id); err != nil {
		return nil, err
	}

	checked := make([]sniffedUpload, 0, len(files))
	for _, f := range files {
		su, err := sniffUpload(f)
		if err != nil {
			log.Warn("Содержимое файла не совпадает с заявленным типом",
				zap.String("file", f.OriginalName), zap.String("declared", f.Mimetype), zap.Error(err))
			return nil, err
		}
		checked = append(checked, su)
	}

	var saved []string
	atts := make([]models.Attachment, 0, len(files))
	names := make([]string, 0, len(files))
	now := time.Now().UTC()

	for _, f := range checked {
		name := storage.NewName(ExtensionFor(f.mimetype))
		if err := s.blobs.Save(ctx, name, f.body, f.Size, f.mimetype); err != nil {
			log.Error("Ошибка сохранения файла", zap.String("file", f.OriginalName), zap.Error(err))
			s.deleteBlobs(ctx, saved)
			return nil, err
		}
		saved = append(saved, name)
		atts = append(atts, models.Attachment{
			ID:           uuid.NewString(),
			Filename:     name,
			OriginalName: f.OriginalName,
			Path:         storage.PublicPath(name),
			Mimetype:     f.mimetype,
			Size:         f.Size,
			UploadedAt:   now,
		})
		names = append(names, f.OriginalName)
	}

	updated, err := s.articles.AppendAttachments(ctx, id, atts)
	if err != nil {
		s.deleteBlobs(ctx, saved)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		log.Error("Ошибка сохранения метаданных вложений (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.notifier.AttachmentsAdded(ctx, updated, actor.DisplayName(), names)
	log.Info("Вложения добавлены", zap.String("id", id), zap.Int("count", len(atts)))
	return updated, nil
}

// RemoveAttachment убирает метаданные, затем удаляет файл, если на него
// не ссылается ни одна версия статьи.
func (s *articleService) RemoveAttachment(ctx context.Context, actor *Actor, id, attachmentID string) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Удаление вложения", zap.String("id", id), zap.String("attachment_id", attachmentID))

	if actor == nil {
		return nil, ErrTokenRequired
	}
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canModify(a.UserID) {
		log.Warn("Попытка удалить вложение чужой статьи", zap.String("id", id))
		return nil, ErrNotArticleOwner
	}

	var target *models.Attachment
	for i := range a.Attachments {
		if a.Attachments[i].ID == attachmentID {
			target = &a.Attachments[i]
			break
		}
	}
	if target == nil {
		return nil, ErrAttachmentNotFound
	}

	updated, err := s.articles.RemoveAttachment(ctx, id, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		log.Error("Ошибка удаления метаданных вложения (repo)", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	still, err := s.articles.AttachmentFilenames(ctx, id)
	if err != nil {
		log.Warn("Не удалось проверить ссылки на файл, оставляем чистильщику", zap.Error(err))
	} else if !contains(still, target.Filename) {
		s.deleteBlobs(ctx, []string{target.Filename})
	}

	s.notifier.AttachmentRemoved(ctx, updated, actor.DisplayName(), target.OriginalName)
	return updated, nil
}

type sniffedUpload struct {
	models.Upload
	mimetype string
	body     io.Reader
}

// sniffUpload сверяет заявленный тип с сигнатурой содержимого (первые 512 байт).
// Прочитанное начало возвращается в body, поток не теряется.
func sniffUpload(f models.Upload) (sniffedUpload, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return sniffedUpload{}, err
	}
	head = head[:n]

	declared := CanonicalMimeType(f.Mimetype)
	if !AllowedMimeType(declared) || CanonicalMimeType(http.DetectContentType(head)) != declared {
		return sniffedUpload{}, ErrInvalidFileType
	}
	return sniffedUpload{
		Upload:   f,
		mimetype: declared,
		body:     io.MultiReader(bytes.NewReader(head), f.Body),
	}, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
