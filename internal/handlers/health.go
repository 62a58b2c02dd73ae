package handlers

import (
	"context"
	"net/http"
	"time"

	"wikihub/internal/logger"
	"wikihub/internal/utils/helpers"

	"go.uber.org/zap"
)

// Pinger — *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary Проверка работоспособности
// @Tags health
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// DB godoc
// @Summary Проверка соединения с базой
// @Tags health
// @Produce json
// @Success 200 {object} helpers.Response
// @Failure 503 {object} helpers.Response
// @Router /health/db [get]
func (h *HealthHandler) DB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.db == nil {
		helpers.ErrorCode(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is not configured")
		return
	}
	if err := h.db.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Error("БД недоступна", zap.Error(err))
		helpers.ErrorCode(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database is unavailable")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}
