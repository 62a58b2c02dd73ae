package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"wikihub/internal/logger"
	"wikihub/internal/services"
	"wikihub/internal/storage"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UploadsHandler отдаёт файлы вложений из хранилища.
type UploadsHandler struct {
	blobs storage.Blobs
}

func NewUploadsHandler(blobs storage.Blobs) *UploadsHandler {
	return &UploadsHandler{blobs: blobs}
}

// Serve godoc
// @Summary Файл вложения
// @Tags attachments
// @Produce octet-stream
// @Param filename path string true "Имя файла"
// @Success 200 {file} file
// @Failure 404 {object} helpers.Response
// @Router /uploads/{filename} [get]
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	rc, info, err := h.blobs.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			helpers.ErrorCode(w, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка чтения файла вложения", zap.String("name", name), zap.Error(err))
		helpers.FromError(w, err)
		return
	}
	defer rc.Close()

	// Отдаём только разрешённые типы; остальное (файлы до проверки сигнатур) скачивается как бинарь.
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if services.AllowedMimeType(info.ContentType) {
		w.Header().Set("Content-Type", services.CanonicalMimeType(info.ContentType))
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", "attachment")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, info.ModTime, rs)
		return
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	_, _ = io.Copy(w, rc)
}
