package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/logger"
)

// fakeStorage is an in-memory storage.ObjectStorage with failure hooks
type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	listed       []domain.StoredObject
	deleted      []string
	expiries     []time.Duration

	beforeUpload func(key string) error
	uploadWait   func(ctx context.Context) error
	listErr      error
	presignErr   func(key string) error
	deleteErr    error
	pingErr      error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if f.uploadWait != nil {
		if err := f.uploadWait(ctx); err != nil {
			return "", err
		}
	}
	if f.beforeUpload != nil {
		if err := f.beforeUpload(key); err != nil {
			return "", err
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if int64(len(data)) != size {
		return "", errors.New("size mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return "https://bucket.example.com/" + key, nil
}

func (f *fakeStorage) List(context.Context) ([]domain.StoredObject, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	f.expiries = append(f.expiries, expiry)
	f.mu.Unlock()
	if f.presignErr != nil {
		if err := f.presignErr(key); err != nil {
			return "", err
		}
	}
	return "https://signed.example.com/" + key + "?X-Amz-Expires=" + expiry.String(), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeStorage) Ping(context.Context) error { return f.pingErr }

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

// fakeRecorder captures audit records
type fakeRecorder struct {
	mu      sync.Mutex
	records []*domain.UploadRecord
	ctxErrs []error
	err     error
}

func (r *fakeRecorder) CreateBatch(ctx context.Context, records []*domain.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, records...)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard, ServiceName: "test"})
}

func textPayload(name, body string) domain.FilePayload {
	return domain.NewBytesPayload(name, "text/plain", []byte(body))
}
