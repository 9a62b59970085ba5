package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Tracing fields (context level)
// Propagated through the call chain of one request
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldBatchID identifies one batch upload
	FieldBatchID = "batch_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldObjectKey is the bucket key being operated on
	FieldObjectKey = "object_key"

	// FieldFileName is the caller-supplied file name
	FieldFileName = "file_name"
)

// ============================================
// Metric fields (entry level)
// Used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
