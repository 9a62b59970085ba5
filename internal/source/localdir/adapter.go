package localdir

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/timmy/bucketgate/internal/domain"
)

const (
	// ManifestFileName is the optional JSONL manifest listing files to upload.
	ManifestFileName = "manifest.jsonl"

	defaultContentType = "application/octet-stream"
)

// ManifestItem represents a line of manifest.jsonl.
// Filename is relative to the source directory.
type ManifestItem struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
}

// item is a file queued for upload
type item struct {
	path        string
	name        string
	contentType string
	size        int64
}

// Adapter implements source.Source for a local directory.
type Adapter struct {
	dir         string
	useManifest bool
	items       []item
	loaded      bool
}

// NewAdapter creates a new local directory adapter.
// Parameters:
//   - dir: directory holding the files.
//   - useManifest: read the file list from manifest.jsonl instead of the directory listing.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(dir string, useManifest bool) *Adapter {
	return &Adapter{
		dir:         dir,
		useManifest: useManifest,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "localdir:" + filepath.Base(a.dir)
}

// Len returns the number of files the source will yield.
func (a *Adapter) Len() (int, error) {
	if err := a.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(a.items), nil
}

// FetchBatch fetches a batch of files from the directory.
// Parameters:
//   - ctx: context for cancellation and deadlines (unused for local reads).
//   - cursor: pagination cursor as an index string.
//   - limit: maximum number of files to fetch.
// Returns:
//   - []domain.FilePayload: batch of payloads.
//   - string: next cursor or empty if no more files.
//   - error: non-nil if loading fails or the cursor is malformed.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.FilePayload, string, error) {
	if err := a.ensureLoaded(); err != nil {
		return nil, "", err
	}

	// Parse cursor (index)
	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil || startIndex < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
	}

	if startIndex >= len(a.items) {
		return []domain.FilePayload{}, "", nil
	}

	endIndex := startIndex + limit
	if limit <= 0 || endIndex > len(a.items) {
		endIndex = len(a.items)
	}

	batch := make([]domain.FilePayload, 0, endIndex-startIndex)
	for _, it := range a.items[startIndex:endIndex] {
		batch = append(batch, it.payload())
	}

	nextCursor := ""
	if endIndex < len(a.items) {
		nextCursor = strconv.Itoa(endIndex)
	}

	return batch, nextCursor, nil
}

func (it item) payload() domain.FilePayload {
	path := it.path
	return domain.FilePayload{
		FileName:    it.name,
		ContentType: it.contentType,
		Size:        it.size,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

func (a *Adapter) ensureLoaded() error {
	if a.loaded {
		return nil
	}

	var err error
	if a.useManifest {
		a.items, err = a.loadManifest()
	} else {
		a.items, err = a.loadDir()
	}
	if err != nil {
		return fmt.Errorf("failed to load files from %s: %w", a.dir, err)
	}

	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].name < a.items[j].name
	})
	a.loaded = true
	return nil
}

// loadDir lists regular files directly under the directory, skipping hidden ones and the manifest
func (a *Adapter) loadDir() ([]item, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}

	items := []item{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || name == ManifestFileName {
			continue
		}
		it, err := a.stat(name, "")
		if err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// loadManifest reads manifest.jsonl line by line
func (a *Adapter) loadManifest() ([]item, error) {
	manifestPath := filepath.Join(a.dir, ManifestFileName)
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	items := []item{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry ManifestItem
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Filename == "" {
			// Skip malformed lines
			continue
		}

		it, err := a.stat(entry.Filename, entry.ContentType)
		if err != nil {
			// Skip if the file doesn't exist
			continue
		}
		items = append(items, it)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	return items, nil
}

// ErrOutsideDir is returned for manifest entries that resolve outside the source directory.
var ErrOutsideDir = errors.New("path escapes source directory")

func (a *Adapter) stat(name, contentType string) (item, error) {
	path := filepath.Join(a.dir, name)
	rel, err := filepath.Rel(a.dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return item{}, fmt.Errorf("%w: %s", ErrOutsideDir, name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return item{}, err
	}
	if !info.Mode().IsRegular() {
		return item{}, fmt.Errorf("%s is not a regular file", path)
	}
	if contentType == "" {
		contentType = contentTypeFor(name)
	}
	return item{
		path:        path,
		name:        filepath.Base(name),
		contentType: contentType,
		size:        info.Size(),
	}, nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}
