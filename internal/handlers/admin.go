package handlers

import (
	"net/http"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AdminHandler struct {
	users *services.UserService
}

func NewAdminHandler(users *services.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers godoc
// @Summary Все пользователи (админ)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} helpers.Response
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, users)
}

// GetUser godoc
// @Summary Пользователь по ID (админ)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {object} models.User
// @Failure 404 {object} helpers.Response
// @Router /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, u)
}

// Stats godoc
// @Summary Статистика пользователей (админ)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserStats
// @Router /api/admin/users/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.UserStats(r.Context())
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, stats)
}

// UpdateRole godoc
// @Summary Сменить роль пользователя (админ)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Param input body models.UpdateRoleRequest true "Новая роль"
// @Success 200 {object} models.User
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := mux.Vars(r)["id"]
	u, err := h.users.UpdateUserRole(r.Context(), actorFrom(r), id, req.Role)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Роль пользователя изменена", zap.String("target", id), zap.String("role", u.Role))
	helpers.JSON(w, http.StatusOK, u)
}
