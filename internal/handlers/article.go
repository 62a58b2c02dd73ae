package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wikihub/internal/export"
	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/services"
	"wikihub/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc    services.ArticleService
	export *export.Service
}

func NewArticleHandler(svc services.ArticleService, exp *export.Service) *ArticleHandler {
	return &ArticleHandler{svc: svc, export: exp}
}

// List godoc
// @Summary Список статей
// @Description Фильтр по рабочему пространству и поиск по подстроке в заголовке и тексте.
// @Tags articles
// @Produce json
// @Param workspaceId query string false "ID рабочего пространства"
// @Param search query string false "Поисковая строка"
// @Success 200 {array} models.ArticleSummary
// @Failure 500 {object} helpers.Response
// @Router /api/articles [get]
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.ListArticles(r.Context(), q.Get("workspaceId"), q.Get("search"))
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get godoc
// @Summary Статья по ID
// @Tags articles
// @Produce json
// @Param id path string true "ID статьи"
// @Success 200 {object} models.Article
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id} [get]
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetArticle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// GetWithComments godoc
// @Summary Статья вместе с комментариями
// @Tags articles
// @Produce json
// @Param id path string true "ID статьи"
// @Success 200 {object} models.ArticleWithComments
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id}/with-comments [get]
func (h *ArticleHandler) GetWithComments(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetArticleWithComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Create godoc
// @Summary Создать статью
// @Description Создаёт статью и её первую версию одной транзакцией.
// @Tags articles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body models.CreateArticleRequest true "Статья"
// @Success 201 {object} models.Article
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response
// @Router /api/articles [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.CreateArticle(r.Context(), actorFrom(r), req)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, a)
}

// Update godoc
// @Summary Обновить статью
// @Description Каждое сохранение создаёт новую версию. Править может владелец или админ.
// @Tags articles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID статьи"
// @Param input body models.UpdateArticleRequest true "Новые данные"
// @Success 200 {object} models.Article
// @Failure 400 {object} helpers.Response
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Failure 409 {object} helpers.Response
// @Router /api/articles/{id} [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.UpdateArticle(r.Context(), actorFrom(r), mux.Vars(r)["id"], req)
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Delete godoc
// @Summary Удалить статью
// @Tags articles
// @Security BearerAuth
// @Param id path string true "ID статьи"
// @Success 204
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArticle(r.Context(), actorFrom(r), mux.Vars(r)["id"]); err != nil {
		helpers.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportPDF godoc
// @Summary Экспорт статьи в PDF
// @Tags articles
// @Produce application/pdf
// @Param id path string true "ID статьи"
// @Success 200 {file} file
// @Failure 404 {object} helpers.Response
// @Failure 500 {object} helpers.Response
// @Router /api/articles/{id}/pdf [get]
func (h *ArticleHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetArticle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.FromError(w, err)
		return
	}
	res, err := h.export.ArticlePDF(r.Context(), a)
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			logger.WithCtx(r.Context()).Error("PDF: не найден Chrome/Chromium", zap.Error(err))
		}
		helpers.FromError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
