package services

import (
	"regexp"
	"strings"

	"wikihub/internal/models"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Расширение хранимого файла берётся только отсюда, имя от клиента не используется.
var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
}

// UploadLimits — ограничения на загрузку вложений.
type UploadLimits struct {
	MaxFiles int
	MaxSize  int64
}

func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxFiles: 5, MaxSize: 10 << 20}
}

func ValidateArticleInput(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(content) == "" {
		return ErrContentRequired
	}
	return nil
}

func ValidateAttachmentFiles(files []models.Upload, limits UploadLimits) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		return ErrTooManyFiles(limits.MaxFiles)
	}
	for _, f := range files {
		if limits.MaxSize > 0 && f.Size > limits.MaxSize {
			return ErrFileTooLarge(limits.MaxSize)
		}
		if !AllowedMimeType(f.Mimetype) {
			return ErrInvalidFileType
		}
	}
	return nil
}

func AllowedMimeType(mime string) bool {
	_, ok := mimeExtensions[CanonicalMimeType(mime)]
	return ok
}

// CanonicalMimeType убирает параметры и приводит синонимы к одному виду.
func CanonicalMimeType(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if alias, ok := mimeAliases[mime]; ok {
		return alias
	}
	return mime
}

// ExtensionFor — расширение для разрешённого типа; пусто для остальных.
func ExtensionFor(mime string) string {
	return mimeExtensions[CanonicalMimeType(mime)]
}

func ValidateCommentInput(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrCommentContentRequired
	}
	return nil
}

func ValidateWorkspaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrWorkspaceNameRequired
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
