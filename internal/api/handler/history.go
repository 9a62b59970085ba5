package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/repository"
)

const defaultHistoryLimit = 50

// UploadHistory reads the upload audit log.
type UploadHistory interface {
	ListRecent(ctx context.Context, limit int) ([]domain.UploadRecord, error)
	ListByBatch(ctx context.Context, batchID string) ([]domain.UploadRecord, error)
}

// HistoryHandler serves the upload audit log. A nil history means auditing is off.
type HistoryHandler struct {
	history UploadHistory
	errors  Errors
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history UploadHistory, errs Errors) *HistoryHandler {
	return &HistoryHandler{history: history, errors: errs}
}

// List handles GET /uploads/history?limit=N&batch_id=ID.
func (h *HistoryHandler) List(c *gin.Context) {
	if h.history == nil {
		h.errors.respond(c, http.StatusNotFound, "Upload history is disabled", nil)
		return
	}

	ctx := c.Request.Context()
	if batchID := c.Query("batch_id"); batchID != "" {
		records, err := h.history.ListByBatch(ctx, batchID)
		if err != nil {
			h.errors.respond(c, http.StatusInternalServerError, "Failed to read upload history", err)
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > repository.MaxHistoryLimit {
			h.errors.respond(c, http.StatusBadRequest, "Invalid limit",
				fmt.Errorf("limit must be an integer between 1 and %d", repository.MaxHistoryLimit))
			return
		}
		limit = n
	}

	records, err := h.history.ListRecent(ctx, limit)
	if err != nil {
		h.errors.respond(c, http.StatusInternalServerError, "Failed to read upload history", err)
		return
	}
	c.JSON(http.StatusOK, records)
}
