package handlers

import (
	"net/http"

	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type WorkspaceHandler struct {
	svc *services.WorkspaceService
}

func NewWorkspaceHandler(svc *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// List godoc
// @Summary Рабочие пространства
// @Tags workspaces
// @Produce json
// @Success 200 {array} models.Workspace
// @Router /api/workspaces [get]
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary Рабочее пространство по ID
// @Tags workspaces
// @Produce json
// @Param id path string true "ID пространства"
// @Success 200 {object} models.Workspace
// @Failure 404 {object} helpers.Response
// @Router /api/workspaces/{id} [get]
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, ws)
}

// Rename godoc
// @Summary Переименовать рабочее пространство (админ)
// @Tags workspaces
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID пространства"
// @Param input body models.RenameWorkspaceRequest true "Новое имя"
// @Success 200 {object} models.Workspace
// @Failure 400 {object} helpers.Response
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/workspaces/{id} [put]
func (h *WorkspaceHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req models.RenameWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.svc.Rename(r.Context(), actorFrom(r), mux.Vars(r)["id"], req.Name)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, ws)
}
