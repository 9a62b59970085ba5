package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/bucketgate/internal/api"
	"github.com/timmy/bucketgate/internal/api/handler"
	"github.com/timmy/bucketgate/internal/config"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/repository"
	"github.com/timmy/bucketgate/internal/service"
	"github.com/timmy/bucketgate/internal/storage"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Initialize logger
	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage (supports S3, R2, MinIO and other S3-compatible services)
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	if cfg.Storage.EnsureBucket {
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			log.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	// Upload audit log is optional; nil interfaces disable it
	var (
		recorder service.UploadRecorder
		history  handler.UploadHistory
	)
	if cfg.Database.Enabled {
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize database")
		}
		uploadRepo := repository.NewUploadRepository(db)
		recorder = uploadRepo
		history = uploadRepo
		log.WithField("driver", cfg.Database.Driver).Info("Upload audit log enabled")
	}

	// Initialize services
	fileService := service.NewFileService(objectStorage, recorder, log, &service.FileConfig{
		KeyPrefix:       cfg.Upload.KeyPrefix,
		MaxFileSize:     cfg.Upload.MaxSingleFileSize,
		SignedURLExpiry: cfg.SignedURL.SingleExpiry,
	})
	batchService := service.NewBatchService(objectStorage, recorder, log, &service.BatchConfig{
		KeyPrefix:       cfg.Upload.KeyPrefix,
		MaxFiles:        cfg.Upload.MaxFiles,
		MaxFileSize:     cfg.Upload.MaxFileSize,
		SignedURLExpiry: cfg.SignedURL.BatchExpiry,
	})

	// Setup router
	router := api.SetupRouter(fileService, batchService, history, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"bucket":  cfg.Storage.Bucket,
			"storage": cfg.Storage.Type,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server exited with error")
		logger.Sync()
		os.Exit(1)
	}

	log.Info("Server exited")
}
