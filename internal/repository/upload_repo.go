package repository

import (
	"context"

	"github.com/timmy/bucketgate/internal/domain"
	"gorm.io/gorm"
)

// MaxHistoryLimit caps how many audit records one query returns.
const MaxHistoryLimit = 500

// UploadRepository persists the upload audit log.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new UploadRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *UploadRepository: repository instance bound to db.
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// CreateBatch inserts audit records in one statement.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - records: records to persist; an empty slice is a no-op.
// Returns:
//   - error: non-nil if the insert fails.
func (r *UploadRepository) CreateBatch(ctx context.Context, records []*domain.UploadRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(records).Error
}

// ListRecent returns the newest audit records first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records, clamped to 1..MaxHistoryLimit.
// Returns:
//   - []domain.UploadRecord: records ordered by creation time, newest first.
//   - error: non-nil if the query fails.
func (r *UploadRepository) ListRecent(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records := make([]domain.UploadRecord, 0, limit)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByBatch returns the audit records of one batch upload.
func (r *UploadRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.UploadRecord, error) {
	records := make([]domain.UploadRecord, 0)
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
