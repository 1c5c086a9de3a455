package main

import (
	"DonationHub/internal/config"
	"DonationHub/internal/handlers"
	"DonationHub/internal/middleware"
	"DonationHub/internal/repo"
	"DonationHub/internal/service"
	"DonationHub/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	donationRepo, closeRepo, err := repo.Open(ctx, cfg.DatabaseDSN, cfg.MongoDatabase)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeRepo(closeCtx); err != nil {
			sugar.Errorw("failed to close database", "error", err)
		}
	}()

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize image storage", "error", err)
	}

	donationService := service.NewDonationService(donationRepo, sugar)
	h := handlers.NewHandler(donationService, images, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sugar.Infow("Starting server", "addr", srv.Addr)
	sugar.Infow("Config",
		"ServerURL", cfg.ServerURL,
		"DatabaseDSN", cfg.DatabaseDSN,
		"UploadDir", cfg.UploadDir,
		"S3Bucket", cfg.S3Bucket,
		"Admins", len(cfg.AdminEmails),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("Server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

// newImageStore: S3, если задан бакет, иначе локальная папка загрузок.
func newImageStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion)
	}
	return storage.NewFileStore(cfg.UploadDir, "/api/uploads")
}
