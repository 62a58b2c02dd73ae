package handlers

import (
	"encoding/json"
	"net/http"

	"wikihub/internal/logger"
	"wikihub/internal/reqctx"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"go.uber.org/zap"
)

// actorFrom — автор запроса из контекста (nil для анонима).
func actorFrom(r *http.Request) *services.Actor {
	u, ok := reqctx.GetUser(r.Context())
	if !ok || u.ID == "" {
		return nil
	}
	return &services.Actor{UserID: u.ID, Name: u.Name, Role: u.Role}
}

// decodeJSON читает тело запроса; при ошибке сам пишет 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithCtx(r.Context()).Warn("Некорректный JSON в запросе", zap.Error(err))
		helpers.ErrorCode(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	return true
}
