package routes

import (
	"net/http"

	"wikihub/internal/handlers"
	"wikihub/internal/middleware"
	"wikihub/internal/models"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Article    *handlers.ArticleHandler
	Attachment *handlers.AttachmentHandler
	Version    *handlers.VersionHandler
	Comment    *handlers.CommentHandler
	Workspace  *handlers.WorkspaceHandler
	Admin      *handlers.AdminHandler
	Logs       *handlers.AdminLogsHandler
	Health     *handlers.HealthHandler
	Uploads    *handlers.UploadsHandler
	WS         http.Handler
}

func InitRoutes(router *mux.Router, h Handlers, jwtSecret string) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	router.HandleFunc("/health", h.Health.Health).Methods("GET")
	router.HandleFunc("/health/db", h.Health.DB).Methods("GET")
	router.HandleFunc("/uploads/{filename}", h.Uploads.Serve).Methods("GET")
	if h.WS != nil {
		router.Handle("/ws", h.WS).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuth(jwtSecret))

	public.HandleFunc("/auth/register", h.Auth.Register).Methods("POST")
	public.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	public.HandleFunc("/articles", h.Article.List).Methods("GET")
	public.HandleFunc("/articles/{id}", h.Article.Get).Methods("GET")
	public.HandleFunc("/articles/{id}/with-comments", h.Article.GetWithComments).Methods("GET")
	public.HandleFunc("/articles/{id}/pdf", h.Article.ExportPDF).Methods("GET")
	public.HandleFunc("/articles/{id}/comments", h.Comment.List).Methods("GET")

	public.HandleFunc("/versions/{id}/versions", h.Version.List).Methods("GET")
	public.HandleFunc("/versions/{id}/versions/{n}", h.Version.Get).Methods("GET")

	public.HandleFunc("/workspaces", h.Workspace.List).Methods("GET")
	public.HandleFunc("/workspaces/{id}", h.Workspace.Get).Methods("GET")

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(jwtSecret), middleware.AdminFastLane)

	protected.HandleFunc("/auth/profile", h.Auth.Profile).Methods("GET")

	protected.HandleFunc("/articles", h.Article.Create).Methods("POST")
	protected.HandleFunc("/articles/{id}", h.Article.Update).Methods("PUT")
	protected.HandleFunc("/articles/{id}", h.Article.Delete).Methods("DELETE")
	protected.HandleFunc("/articles/{id}/attachments", h.Attachment.Upload).Methods("POST")
	protected.HandleFunc("/articles/{id}/attachments/{attachmentId}", h.Attachment.Remove).Methods("DELETE")
	protected.HandleFunc("/articles/{id}/comments", h.Comment.Create).Methods("POST")

	protected.HandleFunc("/comments/{id}", h.Comment.Update).Methods("PUT")
	protected.HandleFunc("/comments/{id}", h.Comment.Delete).Methods("DELETE")

	protected.HandleFunc("/versions/{id}/versions/{n}/restore", h.Version.Restore).Methods("POST")

	// --- Только админ ---
	adminWS := protected.PathPrefix("/workspaces").Subrouter()
	adminWS.Use(middleware.OnlyRole(models.RoleAdmin))
	adminWS.HandleFunc("/{id}", h.Workspace.Rename).Methods("PUT")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.OnlyRole(models.RoleAdmin))
	admin.HandleFunc("/users", h.Admin.ListUsers).Methods("GET")
	admin.HandleFunc("/users/stats", h.Admin.Stats).Methods("GET")
	admin.HandleFunc("/users/{id}", h.Admin.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}/role", h.Admin.UpdateRole).Methods("PUT")

	admin.HandleFunc("/logs/days", h.Logs.ListDays).Methods("GET")
	admin.HandleFunc("/logs", h.Logs.GetLogs).Methods("GET")
	admin.HandleFunc("/logs/stats", h.Logs.Stats).Methods("GET")
	admin.HandleFunc("/logs/download", h.Logs.DownloadRaw).Methods("GET")
}
