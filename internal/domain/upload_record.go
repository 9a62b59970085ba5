package domain

import "time"

// UploadRecord is one row of the upload audit log.
// It records an upload attempt and is never used to answer listings.
type UploadRecord struct {
	ID           string       `gorm:"type:text;primaryKey" json:"id"`
	BatchID      string       `gorm:"type:text;index" json:"batch_id,omitempty"`
	Key          string       `gorm:"type:text;index" json:"key,omitempty"`
	OriginalName string       `gorm:"type:text;not null" json:"original_name"`
	ContentType  string       `gorm:"type:text" json:"content_type,omitempty"`
	Size         int64        `gorm:"default:0" json:"size"`
	Width        int          `gorm:"default:0" json:"width,omitempty"`
	Height       int          `gorm:"default:0" json:"height,omitempty"`
	Status       UploadStatus `gorm:"type:text;not null;index" json:"status"`
	Error        string       `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
}

// TableName returns the database table name for UploadRecord.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (UploadRecord) TableName() string {
	return "upload_records"
}
