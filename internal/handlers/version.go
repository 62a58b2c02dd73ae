package handlers

import (
	"net/http"
	"strconv"

	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type VersionHandler struct {
	svc services.ArticleService
}

func NewVersionHandler(svc services.ArticleService) *VersionHandler {
	return &VersionHandler{svc: svc}
}

// List godoc
// @Summary История версий статьи
// @Description Новые версии первыми.
// @Tags versions
// @Produce json
// @Param id path string true "ID статьи"
// @Success 200 {array} models.VersionSummary
// @Failure 404 {object} helpers.Response
// @Router /api/versions/{id}/versions [get]
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.GetArticleVersions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary Конкретная версия статьи
// @Tags versions
// @Produce json
// @Param id path string true "ID статьи"
// @Param n path int true "Номер версии"
// @Success 200 {object} models.HistoricalVersion
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/versions/{id}/versions/{n} [get]
func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := versionNumber(w, vars["n"])
	if !ok {
		return
	}
	v, err := h.svc.GetArticleVersion(r.Context(), vars["id"], n)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.HistoricalVersion{ArticleVersion: v, IsHistorical: true})
}

// Restore godoc
// @Summary Восстановить версию
// @Description Создаёт новую версию с содержимым версии n. История не переписывается.
// @Tags versions
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID статьи"
// @Param n path int true "Номер версии"
// @Success 200 {object} models.RestoreResult
// @Failure 401 {object} helpers.Response
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Failure 409 {object} helpers.Response
// @Router /api/versions/{id}/versions/{n}/restore [post]
func (h *VersionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, ok := versionNumber(w, vars["n"])
	if !ok {
		return
	}
	res, err := h.svc.RestoreArticleVersion(r.Context(), actorFrom(r), vars["id"], n)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}

func versionNumber(w http.ResponseWriter, raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		helpers.FromError(w, services.ErrInvalidVersion)
		return 0, false
	}
	return n, true
}
