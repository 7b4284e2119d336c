package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/app"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/database"
	"github.com/Helmus101/confluence/internal/handler"
	"github.com/Helmus101/confluence/internal/logger"
	middlewarepkg "github.com/Helmus101/confluence/internal/middleware"
	"github.com/Helmus101/confluence/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if cfg.AutoMigrate && cfg.Store == "postgres" {
		if err := migrate(cfg, zapLogger); err != nil {
			zapLogger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialise application", zap.Error(err))
	}
	defer application.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zapLogger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, application.JWT, router.Handlers{
		Auth:          handler.NewAuthHandler(application.Auth, application.Users),
		Contacts:      handler.NewContactHandler(application.Contacts),
		Search:        handler.NewSearchHandler(application.Search),
		Intros:        handler.NewIntroHandler(application.Intros),
		Notifications: handler.NewNotificationHandler(application.Notifications),
		Admin:         handler.NewAdminHandler(application.Users, application.Reports),
	})

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("http server listening", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zapLogger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func migrate(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.RunMigrations(db, cfg.MigrationsPath, logger)
}
