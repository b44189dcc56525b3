//	@title			GeoIQ File Gateway API
//	@version		1.0
//	@description	Uploads files to object storage, records each upload, and serves files back by name.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/geoiq/gateway/internal/config"
	"github.com/geoiq/gateway/internal/db"
	"github.com/geoiq/gateway/internal/logger"
	"github.com/geoiq/gateway/internal/router"
	"github.com/geoiq/gateway/internal/storage"
	"github.com/geoiq/gateway/internal/upload"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	log.Info("configuration loaded", zap.Stringer("config", cfg))
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("required configuration missing; affected requests will fail", zap.Strings("keys", missing))
	}

	ctx := context.Background()

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("object storage init failed", zap.Error(err))
	}

	// Wire dependencies: repository → service → handler
	uploadRepo := upload.NewRepository(db.NewOpener(cfg.DatabaseURL()))
	uploadSvc := upload.NewService(store, uploadRepo, log)
	uploadHandler := upload.NewHandler(uploadSvc, log, cfg.UploadMemoryLimit)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(uploadHandler, log),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("bucket", store.Bucket()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
