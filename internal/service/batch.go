package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/metrics"
	"github.com/timmy/bucketgate/internal/storage"
)

// BatchService runs batched uploads and batched URL signing.
// Every item settles independently; one failure never aborts its siblings.
type BatchService struct {
	storage  storage.ObjectStorage
	uploader *uploader
	keys     *keyBuilder
	recorder UploadRecorder
	logger   *logger.Logger
	maxFiles int
	expiry   time.Duration
}

// BatchConfig holds configuration for the batch service
type BatchConfig struct {
	KeyPrefix       string
	MaxFiles        int
	MaxFileSize     int64
	SignedURLExpiry time.Duration
}

// NewBatchService creates a new batch service.
// recorder may be nil when the audit log is disabled.
func NewBatchService(
	objectStorage storage.ObjectStorage,
	recorder UploadRecorder,
	log *logger.Logger,
	cfg *BatchConfig,
) *BatchService {
	return &BatchService{
		storage:  objectStorage,
		uploader: &uploader{storage: objectStorage, maxFileSize: cfg.MaxFileSize},
		keys:     newKeyBuilder(cfg.KeyPrefix),
		recorder: recorder,
		logger:   log,
		maxFiles: cfg.MaxFiles,
		expiry:   cfg.SignedURLExpiry,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *BatchService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// MaxFiles returns the largest batch UploadBatch accepts.
func (s *BatchService) MaxFiles() int {
	return s.maxFiles
}

// UploadBatch stores every file concurrently and waits until all of them settled.
// Cancelling ctx after dispatch neither aborts an item nor the audit write.
// Each file gets a key of the form <prefix><uuid>-<name>. Errors and panics of one
// upload become that file's failed outcome. The returned error is non-nil only when
// the batch is rejected before dispatch (ErrNoFiles, ErrTooManyFiles).
func (s *BatchService) UploadBatch(ctx context.Context, files []domain.FilePayload) (*domain.BatchUploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyFiles, len(files), s.maxFiles)
	}

	batchID := uuid.New().String()
	// Dispatched items run to completion; only the logger values of ctx are kept
	ctx = context.WithoutCancel(logger.SetBatchID(ctx, batchID))
	start := time.Now()

	// One slot per input; goroutines write only their own index
	outcomes := make([]domain.UploadOutcome, len(files))
	records := make([]*domain.UploadRecord, len(files))

	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], records[i] = s.uploadOne(ctx, batchID, files[i])
		}(i)
	}
	wg.Wait()

	result := &domain.BatchUploadResult{
		BatchID:    batchID,
		Successful: make([]domain.UploadOutcome, 0, len(files)),
		Failed:     make([]domain.UploadOutcome, 0),
	}
	for _, o := range outcomes {
		if o.Succeeded() {
			result.Successful = append(result.Successful, o)
		} else {
			result.Failed = append(result.Failed, o)
		}
	}

	record(ctx, s.recorder, records)

	elapsed := time.Since(start)
	outcome := result.Outcome()
	metrics.BatchUploadDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
	metrics.UploadItemsTotal.WithLabelValues("batch", string(domain.UploadStatusSucceeded)).Add(float64(len(result.Successful)))
	metrics.UploadItemsTotal.WithLabelValues("batch", string(domain.UploadStatusFailed)).Add(float64(len(result.Failed)))

	logger.With(logger.Fields{logger.FieldStatus: string(outcome)}).
		WithCount(len(files)).
		WithDuration(elapsed.Milliseconds()).
		Info(ctx, "Batch upload settled: succeeded=%d, failed=%d", len(result.Successful), len(result.Failed))

	return result, nil
}

// uploadOne stores a single batch item and never panics
func (s *BatchService) uploadOne(ctx context.Context, batchID string, file domain.FilePayload) (out domain.UploadOutcome, rec *domain.UploadRecord) {
	key := s.keys.unique(file.FileName)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("upload panicked: %v", r)
			out = failedOutcome(file.FileName, err)
			rec = newRecord(batchID, key, file, nil, err)
			s.log(ctx).WithField(logger.FieldFileName, file.FileName).WithError(err).Error("Recovered from panic in batch upload")
		}
	}()

	stored, err := s.uploader.put(ctx, key, file)
	rec = newRecord(batchID, key, file, stored, err)
	if err != nil {
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldObjectKey: key,
			logger.FieldFileName:  file.FileName,
		}).WithError(err).Warn("Batch item failed")
		return failedOutcome(file.FileName, err), rec
	}

	return domain.UploadOutcome{
		OriginalName: file.FileName,
		Status:       domain.UploadStatusSucceeded,
		Key:          key,
		Location:     stored.location,
	}, rec
}

func failedOutcome(name string, err error) domain.UploadOutcome {
	return domain.UploadOutcome{
		OriginalName: name,
		Status:       domain.UploadStatusFailed,
		Error:        err.Error(),
	}
}

// SignURLs signs a retrieval URL for each key in order.
// A key the signer rejects yields {key, error} in its slot; the remaining keys are still signed.
func (s *BatchService) SignURLs(ctx context.Context, keys []string) ([]domain.SignedURLOutcome, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	results := make([]domain.SignedURLOutcome, len(keys))
	failed := 0
	for i, key := range keys {
		results[i].Key = key
		url, err := s.storage.PresignGet(ctx, key, s.expiry)
		if err != nil {
			failed++
			results[i].Error = err.Error()
			s.log(ctx).WithField(logger.FieldObjectKey, key).WithError(err).Warn("Failed to sign URL")
			continue
		}
		results[i].URL = url
	}

	metrics.SignedURLsTotal.WithLabelValues("batch", string(domain.UploadStatusSucceeded)).Add(float64(len(keys) - failed))
	metrics.SignedURLsTotal.WithLabelValues("batch", string(domain.UploadStatusFailed)).Add(float64(failed))

	return results, nil
}
