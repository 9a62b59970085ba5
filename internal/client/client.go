package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/bucketgate/internal/domain"
)

const bulkUploadPath = "/BulkUpload"

// Client talks to a bucketgate server.
type Client struct {
	client *resty.Client
}

// Config holds configuration for the client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// APIError is returned when the server rejects a request outright.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("server returned %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// bulkUploadBody covers both the settled batch body and the rejection body
type bulkUploadBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
	domain.BatchUploadResult
}

// New creates a new client
func New(cfg *Config) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// BulkUpload posts files as one batch.
// A settled batch (200, 207 or an all-failed 500) returns its result and status code;
// any other response is an *APIError.
func (c *Client) BulkUpload(ctx context.Context, files []domain.FilePayload) (*domain.BatchUploadResult, int, error) {
	req := c.client.R().SetContext(ctx)

	for _, f := range files {
		if f.Open == nil {
			return nil, 0, fmt.Errorf("file %s has no content", f.FileName)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open %s: %w", f.FileName, err)
		}
		defer rc.Close()

		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		req.SetMultipartField("files", f.FileName, contentType, io.Reader(rc))
	}

	var body bulkUploadBody
	resp, err := req.
		SetResult(&body).
		SetError(&body).
		Post(bulkUploadPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call bulk upload: %w", err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusOK, status == http.StatusMultiStatus:
		return &body.BatchUploadResult, status, nil
	case status == http.StatusInternalServerError && body.Error == "":
		// All files failed but the batch settled
		return &body.BatchUploadResult, status, nil
	default:
		msg := body.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return nil, status, &APIError{StatusCode: status, Message: msg, Details: body.Details}
	}
}
