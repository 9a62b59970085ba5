package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/service"
	"github.com/timmy/bucketgate/internal/storage"
)

// deletePrefix is prepended to the :key segment of DELETE /files/uploads/:key.
const deletePrefix = "uploads/"

// FileHandler handles single-object endpoints.
type FileHandler struct {
	fileService *service.FileService
	errors      Errors
}

// NewFileHandler creates a new file handler.
// Parameters:
//   - fileService: file service instance.
//   - errs: error response builder.
// Returns:
//   - *FileHandler: initialized handler.
func NewFileHandler(fileService *service.FileService, errs Errors) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		errors:      errs,
	}
}

// Upload handles POST /upload.
func (h *FileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.respond(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		c.String(http.StatusBadRequest, "No file uploaded.")
		return
	}

	uploaded, err := h.fileService.Upload(c.Request.Context(), payloadFromHeader(fh))
	if err != nil {
		if errors.Is(err, service.ErrFileTooLarge) {
			h.errors.respond(c, http.StatusBadRequest, "File too large", err)
			return
		}
		h.errors.respond(c, http.StatusInternalServerError, "Failed to upload file", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully!",
		"location": uploaded.Location,
		"key":      uploaded.Key,
	})
}

// List handles GET /files.
func (h *FileHandler) List(c *gin.Context) {
	objects, err := h.fileService.List(c.Request.Context())
	if err != nil {
		h.errors.respond(c, http.StatusInternalServerError, "Failed to list files", err)
		return
	}
	c.JSON(http.StatusOK, objects)
}

// SignedURL handles GET /files/*s3Key.
// The key is the whole remainder of the path, decoded once.
func (h *FileHandler) SignedURL(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("s3Key"), "/")
	if key == "" {
		h.errors.respond(c, http.StatusBadRequest, "File key is required", nil)
		return
	}

	url, err := h.fileService.SignedURL(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			h.errors.respond(c, http.StatusBadRequest, "Invalid file key", err)
			return
		}
		h.errors.respond(c, http.StatusInternalServerError, "Failed to generate signed URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed URL generated successfully",
		"url":     url,
		"key":     key,
	})
}

// Delete handles DELETE /files/uploads/:key.
func (h *FileHandler) Delete(c *gin.Context) {
	key := deletePrefix + c.Param("key")

	if err := h.fileService.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			h.errors.respond(c, http.StatusBadRequest, "Invalid file key", err)
			return
		}
		h.errors.respond(c, http.StatusInternalServerError, "Failed to delete file", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("File with key '%s' deleted successfully.", key),
	})
}

// payloadFromHeader adapts a multipart part to the service payload.
// The part is opened lazily by whoever stores it.
func payloadFromHeader(fh *multipart.FileHeader) domain.FilePayload {
	return domain.FilePayload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
