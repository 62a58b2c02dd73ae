// createadmin заводит администратора из ADMIN_EMAIL/ADMIN_PASSWORD/ADMIN_NAME, если его ещё нет.
package main

import (
	"context"
	"errors"
	"time"

	"wikihub/internal/config"
	"wikihub/internal/db"
	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/repository"
	"wikihub/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Ошибка загрузки конфига: " + err.Error())
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Log.Fatal("ADMIN_EMAIL и ADMIN_PASSWORD обязательны")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Ошибка подключения к БД", zap.String("dsn", cfg.GetDSNSafe()), zap.Error(err))
	}
	defer conn.Close()

	if err := db.ApplyMigrations(ctx, conn); err != nil {
		logger.Log.Fatal("Ошибка миграций", zap.Error(err))
	}

	auth := services.NewAuthService(repository.NewUserRepository(conn), cfg.JWTSecret, cfg.TokenTTL())
	u, err := auth.CreateUser(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			logger.Log.Info("Администратор уже существует", zap.String("email", cfg.AdminEmail))
			return
		}
		logger.Log.Fatal("Не удалось создать администратора", zap.Error(err))
	}
	logger.Log.Info("Администратор создан", zap.String("id", u.ID), zap.String("email", u.Email))
}
