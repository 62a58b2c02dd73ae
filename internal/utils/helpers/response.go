package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wikihub/internal/services"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
	Code  string      `json:"code,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	ErrorCode(w, status, "", errMsg)
}

func ErrorCode(w http.ResponseWriter, status int, code, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: errMsg, Code: code})
}

// StatusOf — HTTP-статус для вида ошибки сервиса.
func StatusOf(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError пишет ошибку сервиса. Неизвестные ошибки наружу не отдаются.
func FromError(w http.ResponseWriter, err error) {
	var appErr *services.AppError
	if !errors.As(err, &appErr) || appErr.Kind == services.KindInternal {
		appErr = services.ErrInternal
	}
	ErrorCode(w, StatusOf(appErr.Kind), appErr.Code, appErr.Message)
}
