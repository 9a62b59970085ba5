package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readyTimeout bounds the bucket check of a readiness request
const readyTimeout = 3 * time.Second

// BucketPinger reports whether the backing bucket is reachable.
// *service.FileService satisfies it.
type BucketPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	bucket BucketPinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(bucket BucketPinger) *HealthHandler {
	return &HealthHandler{bucket: bucket}
}

// Health handles GET /health. It answers as long as the process serves requests.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles GET /health/ready: 200 when the bucket answers, 503 otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.bucket.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"bucket": "unreachable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"bucket": "reachable",
	})
}
