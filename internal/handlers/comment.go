package handlers

import (
	"net/http"

	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type CommentHandler struct {
	svc *services.CommentService
}

func NewCommentHandler(svc *services.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List godoc
// @Summary Комментарии к статье
// @Description Старые первыми.
// @Tags comments
// @Produce json
// @Param id path string true "ID статьи"
// @Success 200 {array} models.Comment
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id}/comments [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Create godoc
// @Summary Добавить комментарий
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID статьи"
// @Param input body models.CommentRequest true "Текст комментария"
// @Success 201 {object} models.Comment
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id}/comments [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), actorFrom(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, c)
}

// Update godoc
// @Summary Изменить комментарий
// @Description Только автор комментария или админ.
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID комментария"
// @Param input body models.CommentRequest true "Новый текст"
// @Success 200 {object} models.Comment
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/comments/{id} [put]
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), actorFrom(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, c)
}

// Delete godoc
// @Summary Удалить комментарий
// @Tags comments
// @Security BearerAuth
// @Param id path string true "ID комментария"
// @Success 204
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		helpers.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
