package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/service"
)

// filesField is the multipart field carrying batch upload parts.
const filesField = "files"

// BatchHandler handles batch upload and batch URL signing.
type BatchHandler struct {
	batchService *service.BatchService
	errors       Errors
}

// NewBatchHandler creates a new batch handler.
// Parameters:
//   - batchService: batch service instance.
//   - errs: error response builder.
// Returns:
//   - *BatchHandler: initialized handler.
func NewBatchHandler(batchService *service.BatchService, errs Errors) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		errors:       errs,
	}
}

// BulkUploadResponse is the body of POST /BulkUpload.
type BulkUploadResponse struct {
	Message string `json:"message"`
	*domain.BatchUploadResult
}

// SignURLsRequest is the body of POST /get-signed-urls-batch.
type SignURLsRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// BulkUpload handles POST /BulkUpload.
// Responds 200 when every file was stored, 207 when some were, 500 when none were.
func (h *BatchHandler) BulkUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.respond(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		h.errors.respond(c, http.StatusBadRequest, "No files uploaded", err)
		return
	}

	headers := form.File[filesField]
	payloads := make([]domain.FilePayload, len(headers))
	for i, fh := range headers {
		payloads[i] = payloadFromHeader(fh)
	}

	result, err := h.batchService.UploadBatch(c.Request.Context(), payloads)
	switch {
	case errors.Is(err, service.ErrNoFiles):
		h.errors.respond(c, http.StatusBadRequest, "No files uploaded", err)
		return
	case errors.Is(err, service.ErrTooManyFiles):
		h.errors.respond(c, http.StatusBadRequest, "Too many files", err)
		return
	case err != nil:
		h.errors.respond(c, http.StatusInternalServerError, "Failed to upload files", err)
		return
	}

	status, message := batchStatus(result)
	c.JSON(status, BulkUploadResponse{Message: message, BatchUploadResult: result})
}

func batchStatus(result *domain.BatchUploadResult) (int, string) {
	switch result.Outcome() {
	case domain.BatchAllSucceeded:
		return http.StatusOK, "All files uploaded successfully."
	case domain.BatchPartial:
		return http.StatusMultiStatus, fmt.Sprintf("%d of %d files uploaded successfully.",
			len(result.Successful), result.Total())
	default:
		return http.StatusInternalServerError, "All file uploads failed."
	}
}

// SignURLs handles POST /get-signed-urls-batch.
// Once the key list is valid the response is 200; keys that could not be signed carry an error.
func (h *BatchHandler) SignURLs(c *gin.Context) {
	var req SignURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.respond(c, http.StatusBadRequest, "Invalid or empty keys array", err)
		return
	}

	results, err := h.batchService.SignURLs(c.Request.Context(), req.Keys)
	if err != nil {
		h.errors.respond(c, http.StatusBadRequest, "Invalid or empty keys array", err)
		return
	}

	c.JSON(http.StatusOK, results)
}
