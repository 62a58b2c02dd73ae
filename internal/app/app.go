package app

import (
	"context"
	"fmt"
	"net/http"

	"wikihub/internal/config"
	"wikihub/internal/db"
	"wikihub/internal/export"
	"wikihub/internal/handlers"
	"wikihub/internal/logger"
	"wikihub/internal/realtime"
	"wikihub/internal/repository"
	"wikihub/internal/routes"
	"wikihub/internal/search"
	"wikihub/internal/services"
	"wikihub/internal/storage"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App — собранное приложение. Close освобождает всё, что открыл InitApp.
type App struct {
	Router *mux.Router

	pool   *pgxpool.Pool
	hub    *realtime.Hub
	broker *realtime.RedisBroker
	redis  *redis.Client
	meili  *search.Meili
	cancel context.CancelFunc
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	a := &App{pool: conn, cancel: cancel}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	articleRepo := repository.NewArticleRepo(conn)
	commentRepo := repository.NewCommentRepo(conn)
	workspaceRepo := repository.NewWorkspaceRepo(conn)

	// Файлы
	blobs, err := newBlobs(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	// Уведомления: локальный хаб, при наличии Redis события идут через него
	a.hub = realtime.NewHub(cfg.CORSOrigins)
	var pub realtime.Publisher = a.hub
	if cfg.RedisURL != "" {
		client, err := realtime.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Redis недоступен, уведомления только внутри инстанса", zap.Error(err))
		} else {
			broker := realtime.NewRedisBroker(client, "", a.hub)
			if err := broker.Start(ctx); err != nil {
				logger.Log.Warn("Не удалось подписаться на Redis", zap.Error(err))
				_ = client.Close()
			} else {
				a.broker = broker
				a.redis = client
				pub = broker
			}
		}
	}
	notifier := services.NewNotifier(pub)

	limits := services.UploadLimits{MaxFiles: cfg.MaxUploadFiles, MaxSize: cfg.MaxUploadBytes()}
	deps := services.ArticleDeps{
		Articles:   articleRepo,
		Workspaces: workspaceRepo,
		Comments:   commentRepo,
		Blobs:      blobs,
		Notifier:   notifier,
		Limits:     limits,
	}
	if cfg.MeiliURL != "" {
		a.meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		deps.Index = a.meili
	}

	// Сервисы
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL())
	userService := services.NewUserService(userRepo)
	articleService := services.NewArticleService(deps)
	commentService := services.NewCommentService(commentRepo, articleRepo, notifier)
	workspaceService := services.NewWorkspaceService(workspaceRepo)
	exportService := export.NewService(export.NewChromePrinter(), cfg.PublicURL)

	// Чистка файлов, на которые не ссылается ни одна статья
	sweeper := storage.NewSweeper(blobs, articleRepo, cfg.SweepGrace())
	go sweeper.Run(bgCtx, cfg.SweepInterval())

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Article:    handlers.NewArticleHandler(articleService, exportService),
		Attachment: handlers.NewAttachmentHandler(articleService, limits),
		Version:    handlers.NewVersionHandler(articleService),
		Comment:    handlers.NewCommentHandler(commentService),
		Workspace:  handlers.NewWorkspaceHandler(workspaceService),
		Admin:      handlers.NewAdminHandler(userService),
		Logs:       handlers.NewAdminLogsHandler(cfg.LogDir),
		Health:     handlers.NewHealthHandler(conn),
		Uploads:    handlers.NewUploadsHandler(blobs),
		WS:         http.HandlerFunc(a.hub.ServeWS),
	}, cfg.JWTSecret)

	a.Router = router
	return a, nil
}

func newBlobs(ctx context.Context, cfg *config.Config) (storage.Blobs, error) {
	if cfg.StorageBackend == "minio" {
		logger.Log.Info("Хранилище файлов: MinIO", zap.String("endpoint", cfg.MinioEndpoint), zap.String("bucket", cfg.MinioBucket))
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	logger.Log.Info("Хранилище файлов: диск", zap.String("dir", cfg.UploadDir))
	return storage.NewDiskStore(cfg.UploadDir)
}

// Close останавливает фоновые задачи и закрывает соединения.
func (a *App) Close() {
	a.cancel()
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			logger.Log.Warn("Ошибка отписки от Redis", zap.Error(err))
		}
		_ = a.redis.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.meili != nil {
		a.meili.Close()
	}
	a.pool.Close()
}
