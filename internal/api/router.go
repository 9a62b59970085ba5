package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timmy/bucketgate/internal/api/handler"
	"github.com/timmy/bucketgate/internal/api/middleware"
	"github.com/timmy/bucketgate/internal/config"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/service"
)

// SetupRouter configures the Gin router with all routes.
// history may be nil when the upload audit log is disabled.
func SetupRouter(
	fileService *service.FileService,
	batchService *service.BatchService,
	history handler.UploadHistory,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Keys may contain encoded slashes; match on the raw path and decode params once
	r.UseRawPath = true
	r.UnescapePathValues = true

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	errs := handler.Errors{ExposeDetails: cfg.Server.ExposeErrorDetails}
	healthHandler := handler.NewHealthHandler(fileService)
	fileHandler := handler.NewFileHandler(fileService, errs)
	batchHandler := handler.NewBatchHandler(batchService, errs)
	historyHandler := handler.NewHistoryHandler(history, errs)

	// Health check and metrics
	r.GET("/health", healthHandler.Health)
	r.GET("/health/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploads
	single := []gin.HandlerFunc{fileHandler.Upload}
	if cfg.Upload.MaxSingleFileSize > 0 {
		single = append([]gin.HandlerFunc{middleware.BodyLimit(1, cfg.Upload.MaxSingleFileSize)}, single...)
	}
	r.POST("/upload", single...)
	r.POST("/BulkUpload", middleware.BodyLimit(cfg.Upload.MaxFiles, cfg.Upload.MaxFileSize), batchHandler.BulkUpload)
	r.GET("/uploads/history", historyHandler.List)

	// Objects
	r.GET("/files", fileHandler.List)
	r.GET("/files/*s3Key", fileHandler.SignedURL)
	r.POST("/get-signed-urls-batch", batchHandler.SignURLs)
	r.DELETE("/files/uploads/:key", fileHandler.Delete)

	return r
}
