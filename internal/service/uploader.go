package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/storage"
)

// UploadRecorder persists upload audit records.
// *repository.UploadRepository satisfies it.
type UploadRecorder interface {
	CreateBatch(ctx context.Context, records []*domain.UploadRecord) error
}

// storedFile describes a file that reached the bucket
type storedFile struct {
	location    string
	contentType string
	size        int64
	width       int
	height      int
}

// uploader reads a payload and hands it to the object store
type uploader struct {
	storage     storage.ObjectStorage
	maxFileSize int64
}

// put stores one payload under key.
// The body is buffered so that the size limit is enforced before any bytes reach the backend.
// A maxFileSize of 0 disables the limit.
func (u *uploader) put(ctx context.Context, key string, file domain.FilePayload) (*storedFile, error) {
	limited := u.maxFileSize > 0
	if limited && file.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, file.Size, u.maxFileSize)
	}
	if file.Open == nil {
		return nil, errors.New("file has no content")
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	var body io.Reader = rc
	if limited {
		body = io.LimitReader(rc, u.maxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if limited && int64(len(data)) > u.maxFileSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, u.maxFileSize)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	location, err := u.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, err
	}

	width, height := imageDimensions(contentType, data)
	return &storedFile{
		location:    location,
		contentType: contentType,
		size:        int64(len(data)),
		width:       width,
		height:      height,
	}, nil
}

// newRecord builds the audit record for one upload attempt
func newRecord(batchID, key string, file domain.FilePayload, stored *storedFile, uploadErr error) *domain.UploadRecord {
	rec := &domain.UploadRecord{
		ID:           uuid.New().String(),
		BatchID:      batchID,
		OriginalName: file.FileName,
		ContentType:  file.ContentType,
		Size:         file.Size,
		CreatedAt:    time.Now(),
	}
	if uploadErr != nil {
		rec.Status = domain.UploadStatusFailed
		rec.Error = uploadErr.Error()
		return rec
	}
	rec.Status = domain.UploadStatusSucceeded
	rec.Key = key
	rec.ContentType = stored.contentType
	rec.Size = stored.size
	rec.Width = stored.width
	rec.Height = stored.height
	return rec
}

// record writes audit records; failures are logged and never change an upload outcome
func record(ctx context.Context, recorder UploadRecorder, records []*domain.UploadRecord) {
	if recorder == nil || len(records) == 0 {
		return
	}
	if err := recorder.CreateBatch(ctx, records); err != nil {
		logger.FromContext(ctx).WithError(err).WithField(logger.FieldCount, len(records)).
			Warn("Failed to write upload audit records")
	}
}
