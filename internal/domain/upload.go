package domain

// UploadStatus is the terminal state of a single upload unit.
type UploadStatus string

const (
	UploadStatusSucceeded UploadStatus = "succeeded"
	UploadStatusFailed    UploadStatus = "failed"
)

// UploadedFile is the result of a successful single-file upload.
type UploadedFile struct {
	Key      string `json:"key"`
	Location string `json:"location"`
}

// UploadOutcome records what happened to one file of a batch upload.
// Key and Location are set on success, Error on failure.
type UploadOutcome struct {
	OriginalName string       `json:"originalName"`
	Status       UploadStatus `json:"status"`
	Key          string       `json:"key,omitempty"`
	Location     string       `json:"location,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// Succeeded reports whether the file was stored.
func (o UploadOutcome) Succeeded() bool {
	return o.Status == UploadStatusSucceeded
}

// BatchOutcome classifies a settled batch upload.
type BatchOutcome string

const (
	BatchAllSucceeded BatchOutcome = "all_succeeded"
	BatchPartial      BatchOutcome = "partial"
	BatchAllFailed    BatchOutcome = "all_failed"
)

// BatchUploadResult holds every outcome of a batch upload, split by status.
type BatchUploadResult struct {
	BatchID    string          `json:"batchId,omitempty"`
	Successful []UploadOutcome `json:"successful"`
	Failed     []UploadOutcome `json:"failed"`
}

// Total returns the number of files the batch settled.
func (r *BatchUploadResult) Total() int {
	return len(r.Successful) + len(r.Failed)
}

// Outcome classifies the batch from its partitions.
// An empty result is reported as BatchAllFailed.
func (r *BatchUploadResult) Outcome() BatchOutcome {
	switch {
	case len(r.Successful) > 0 && len(r.Failed) == 0:
		return BatchAllSucceeded
	case len(r.Successful) > 0:
		return BatchPartial
	default:
		return BatchAllFailed
	}
}

// SignedURLOutcome is the per-key result of batch URL signing.
type SignedURLOutcome struct {
	Key   string `json:"key"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}
