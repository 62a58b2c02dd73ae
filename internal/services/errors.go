package services

import (
	"errors"
	"strconv"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
)

// AppError — ошибка бизнес-логики с видом и стабильным кодом для клиента.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

func newErr(kind ErrorKind, code, msg string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: msg}
}

var (
	ErrArticleNotFound    = newErr(KindNotFound, "ARTICLE_NOT_FOUND", "Article not found")
	ErrVersionNotFound    = newErr(KindNotFound, "VERSION_NOT_FOUND", "Article version not found")
	ErrAttachmentNotFound = newErr(KindNotFound, "ATTACHMENT_NOT_FOUND", "Attachment not found")
	ErrCommentNotFound    = newErr(KindNotFound, "COMMENT_NOT_FOUND", "Comment not found")
	ErrWorkspaceNotFound  = newErr(KindNotFound, "WORKSPACE_NOT_FOUND", "Workspace not found")
	ErrUserNotFound       = newErr(KindNotFound, "USER_NOT_FOUND", "User not found")

	ErrTitleRequired          = newErr(KindValidation, "TITLE_REQUIRED", "Title is required")
	ErrContentRequired        = newErr(KindValidation, "CONTENT_REQUIRED", "Content is required")
	ErrCommentContentRequired = newErr(KindValidation, "COMMENT_CONTENT_REQUIRED", "Comment content is required")
	ErrWorkspaceNameRequired  = newErr(KindValidation, "WORKSPACE_NAME_REQUIRED", "Workspace name is required")
	ErrInvalidFileType        = newErr(KindValidation, "INVALID_FILE_TYPE", "Invalid file type. Only images and PDFs are allowed.")
	ErrNoFiles                = newErr(KindValidation, "NO_FILES", "No files uploaded")
	ErrInvalidVersion         = newErr(KindValidation, "INVALID_VERSION", "Invalid version number")
	ErrInvalidEmail           = newErr(KindValidation, "INVALID_EMAIL", "Invalid email format")
	ErrPasswordTooShort       = newErr(KindValidation, "PASSWORD_TOO_SHORT", "Password must be at least 6 characters long")
	ErrNameRequired           = newErr(KindValidation, "NAME_REQUIRED", "Name is required")
	ErrUserExists             = newErr(KindValidation, "USER_ALREADY_EXISTS", "User already exists")
	ErrInvalidRole            = newErr(KindValidation, "INVALID_ROLE", "Invalid role. Must be admin or user")
	ErrOwnRoleChange          = newErr(KindValidation, "OWN_ROLE_CHANGE", "You cannot change your own role")

	ErrInvalidCredentials = newErr(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrTokenRequired      = newErr(KindUnauthorized, "TOKEN_REQUIRED", "Access token is required")
	ErrTokenExpired       = newErr(KindUnauthorized, "TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid       = newErr(KindUnauthorized, "TOKEN_INVALID", "Invalid token")

	ErrAdminOnly       = newErr(KindForbidden, "ADMIN_ONLY", "Admin access required")
	ErrNotArticleOwner = newErr(KindForbidden, "NOT_ARTICLE_OWNER", "You can only edit your own articles")
	ErrNotCommentOwner = newErr(KindForbidden, "NOT_COMMENT_OWNER", "You can only modify your own comments")

	ErrVersionConflict = newErr(KindConflict, "VERSION_CONFLICT", "Article was modified concurrently, please retry")

	ErrInternal = newErr(KindInternal, "INTERNAL_ERROR", "Internal server error")
)

// ErrTooManyFiles — текст зависит от лимита.
func ErrTooManyFiles(max int) *AppError {
	return newErr(KindValidation, "TOO_MANY_FILES", "Too many files. Maximum "+strconv.Itoa(max)+" files allowed.")
}

// ErrFileTooLarge — лимит в сообщении берётся из настроек (MAX_UPLOAD_SIZE_MB).
func ErrFileTooLarge(maxBytes int64) *AppError {
	limit := strconv.FormatInt(maxBytes, 10) + " bytes"
	if maxBytes >= 1<<20 && maxBytes%(1<<20) == 0 {
		limit = strconv.FormatInt(maxBytes>>20, 10) + "MB"
	}
	return newErr(KindValidation, "FILE_TOO_LARGE", "File size too large. Maximum "+limit+" allowed.")
}

// KindOf возвращает вид ошибки; всё, что не AppError, считается внутренней.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
