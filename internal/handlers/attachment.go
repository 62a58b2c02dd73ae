package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	svc    services.ArticleService
	limits services.UploadLimits
}

func NewAttachmentHandler(svc services.ArticleService, limits services.UploadLimits) *AttachmentHandler {
	return &AttachmentHandler{svc: svc, limits: limits}
}

// Upload godoc
// @Summary Загрузить вложения к статье
// @Description Поле files, до 5 файлов, не больше 10MB каждый. Разрешены изображения и PDF.
// @Tags attachments
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID статьи"
// @Param files formData file true "Файлы"
// @Success 200 {object} models.Article
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id}/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	// запас на служебные части формы
	maxBody := h.limits.MaxSize*int64(h.limits.MaxFiles+1) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn("Ошибка разбора multipart-формы", zap.Error(err))
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			helpers.FromError(w, services.ErrFileTooLarge(h.limits.MaxSize))
			return
		}
		helpers.FromError(w, services.ErrNoFiles)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]models.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			log.Error("Не удалось открыть загруженный файл", zap.String("name", fh.Filename), zap.Error(err))
			helpers.FromError(w, err)
			return
		}
		defer f.Close()
		files = append(files, models.Upload{
			OriginalName: fh.Filename,
			Mimetype:     contentType(fh),
			Size:         fh.Size,
			Body:         f,
		})
	}

	a, err := h.svc.AddAttachments(r.Context(), actorFrom(r), mux.Vars(r)["id"], files)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Remove godoc
// @Summary Удалить вложение
// @Tags attachments
// @Security BearerAuth
// @Param id path string true "ID статьи"
// @Param attachmentId path string true "ID вложения"
// @Success 204
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.svc.RemoveAttachment(r.Context(), actorFrom(r), vars["id"], vars["attachmentId"]); err != nil {
		helpers.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
