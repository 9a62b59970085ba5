package service

import (
	"context"
	"time"

	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/metrics"
	"github.com/timmy/bucketgate/internal/storage"
)

// FileService handles single-object operations against the bucket
type FileService struct {
	storage  storage.ObjectStorage
	uploader *uploader
	keys     *keyBuilder
	recorder UploadRecorder
	logger   *logger.Logger
	expiry   time.Duration
}

// FileConfig holds configuration for the file service
type FileConfig struct {
	KeyPrefix       string
	MaxFileSize     int64 // 0 means no limit
	SignedURLExpiry time.Duration
}

// NewFileService creates a new file service.
// recorder may be nil when the audit log is disabled.
func NewFileService(
	objectStorage storage.ObjectStorage,
	recorder UploadRecorder,
	log *logger.Logger,
	cfg *FileConfig,
) *FileService {
	return &FileService{
		storage:  objectStorage,
		uploader: &uploader{storage: objectStorage, maxFileSize: cfg.MaxFileSize},
		keys:     newKeyBuilder(cfg.KeyPrefix),
		recorder: recorder,
		logger:   log,
		expiry:   cfg.SignedURLExpiry,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *FileService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Upload stores one file under <prefix><unix-millis>_<name> with private access.
func (s *FileService) Upload(ctx context.Context, file domain.FilePayload) (*domain.UploadedFile, error) {
	key := s.keys.timestamped(file.FileName)

	stored, err := s.uploader.put(ctx, key, file)
	record(ctx, s.recorder, []*domain.UploadRecord{newRecord("", key, file, stored, err)})
	if err != nil {
		metrics.UploadItemsTotal.WithLabelValues("single", string(domain.UploadStatusFailed)).Inc()
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldObjectKey: key,
			logger.FieldFileName:  file.FileName,
		}).WithError(err).Error("Failed to upload file")
		return nil, err
	}

	metrics.UploadItemsTotal.WithLabelValues("single", string(domain.UploadStatusSucceeded)).Inc()
	logger.With(logger.Fields{logger.FieldObjectKey: key}).
		WithSize(int(stored.size)).
		Info(ctx, "File uploaded")

	return &domain.UploadedFile{Key: key, Location: stored.location}, nil
}

// List returns the first page of bucket objects
func (s *FileService) List(ctx context.Context) ([]domain.StoredObject, error) {
	objects, err := s.storage.List(ctx)
	if err != nil {
		s.log(ctx).WithError(err).Error("Failed to list files")
		return nil, err
	}
	if objects == nil {
		objects = []domain.StoredObject{}
	}
	return objects, nil
}

// SignedURL returns a retrieval URL for key without checking that the object exists
func (s *FileService) SignedURL(ctx context.Context, key string) (string, error) {
	url, err := s.storage.PresignGet(ctx, key, s.expiry)
	if err != nil {
		metrics.SignedURLsTotal.WithLabelValues("single", string(domain.UploadStatusFailed)).Inc()
		s.log(ctx).WithField(logger.FieldObjectKey, key).WithError(err).Error("Failed to sign URL")
		return "", err
	}
	metrics.SignedURLsTotal.WithLabelValues("single", string(domain.UploadStatusSucceeded)).Inc()
	return url, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (s *FileService) Delete(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log(ctx).WithField(logger.FieldObjectKey, key).WithError(err).Error("Failed to delete file")
		return err
	}
	s.log(ctx).WithField(logger.FieldObjectKey, key).Info("File deleted")
	return nil
}

// Ping reports whether the bucket behind the service is reachable
func (s *FileService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
