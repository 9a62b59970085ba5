package source

import (
	"context"

	"github.com/timmy/bucketgate/internal/domain"
)

// Source defines the interface for local file sources fed to batch uploads.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// FetchBatch fetches a batch of files starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of files to fetch.
	// Returns:
	//   - files: batch of file payloads, opened lazily.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (files []domain.FilePayload, nextCursor string, err error)
}
