package domain

import (
	"bytes"
	"io"
	"time"
)

// StoredObject describes one object held in the bucket.
// JSON field names are capitalized to match the listing format clients already consume.
type StoredObject struct {
	Key          string    `json:"Key"`
	LastModified time.Time `json:"LastModified"`
	Size         int64     `json:"Size"`
}

// FilePayload is one file handed to an upload operation.
// Open is called by the unit that stores the file, so a part that cannot be read
// fails only that unit.
type FilePayload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// NewBytesPayload builds a FilePayload backed by an in-memory buffer.
// Parameters:
//   - name: original file name.
//   - contentType: declared MIME type.
//   - data: file body.
// Returns:
//   - FilePayload: payload whose Open returns a fresh reader over data.
func NewBytesPayload(name, contentType string, data []byte) FilePayload {
	return FilePayload{
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
