package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/timmy/bucketgate/internal/domain"
	"github.com/timmy/bucketgate/internal/logger"
)

func newTestBatchService(store *fakeStorage, recorder UploadRecorder) *BatchService {
	return NewBatchService(store, recorder, testLogger(), &BatchConfig{
		KeyPrefix:       "uploads/",
		MaxFiles:        10,
		MaxFileSize:     1 << 20,
		SignedURLExpiry: time.Hour,
	})
}

func TestUploadBatch_StatusFollowsPartition(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		failing  int
		expected domain.BatchOutcome
	}{
		{name: "single success", total: 1, failing: 0, expected: domain.BatchAllSucceeded},
		{name: "all succeed", total: 10, failing: 0, expected: domain.BatchAllSucceeded},
		{name: "one of ten fails", total: 10, failing: 1, expected: domain.BatchPartial},
		{name: "half fail", total: 4, failing: 2, expected: domain.BatchPartial},
		{name: "single failure", total: 1, failing: 1, expected: domain.BatchAllFailed},
		{name: "all fail", total: 7, failing: 7, expected: domain.BatchAllFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStorage()
			store.beforeUpload = func(key string) error {
				if strings.Contains(key, "-bad-") {
					return errors.New("access denied")
				}
				return nil
			}
			svc := newTestBatchService(store, nil)

			files := make([]domain.FilePayload, tc.total)
			for i := range files {
				name := fmt.Sprintf("good-%d.txt", i)
				if i < tc.failing {
					name = fmt.Sprintf("bad-%d.txt", i)
				}
				files[i] = textPayload(name, "content")
			}

			result, err := svc.UploadBatch(context.Background(), files)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := result.Outcome(); got != tc.expected {
				t.Errorf("expected outcome %s, got %s", tc.expected, got)
			}
			if result.Total() != tc.total {
				t.Errorf("expected %d outcomes, got %d", tc.total, result.Total())
			}
			if len(result.Failed) != tc.failing {
				t.Errorf("expected %d failures, got %d", tc.failing, len(result.Failed))
			}
			for _, f := range result.Failed {
				if f.Error != "access denied" {
					t.Errorf("expected backend message, got %q", f.Error)
				}
				if f.Key != "" {
					t.Errorf("failed outcome should carry no key, got %q", f.Key)
				}
			}
			for _, s := range result.Successful {
				if s.Location == "" || s.Key == "" {
					t.Errorf("successful outcome missing key or location: %+v", s)
				}
			}
		})
	}
}

func TestUploadBatch_UniqueKeysForSameName(t *testing.T) {
	store := newFakeStorage()
	svc := newTestBatchService(store, nil)

	files := []domain.FilePayload{
		textPayload("report.pdf", "one"),
		textPayload("report.pdf", "two"),
		textPayload("report.pdf", "three"),
	}

	result, err := svc.UploadBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Successful) != 3 {
		t.Fatalf("expected 3 successes, got %d", len(result.Successful))
	}

	seen := make(map[string]bool)
	for _, o := range result.Successful {
		if seen[o.Key] {
			t.Errorf("duplicate key %q", o.Key)
		}
		seen[o.Key] = true
		if !strings.HasPrefix(o.Key, "uploads/") || !strings.HasSuffix(o.Key, "-report.pdf") {
			t.Errorf("unexpected key format %q", o.Key)
		}
		if o.Key == "uploads/report.pdf" {
			t.Error("caller name must not be used verbatim as key")
		}
	}
	if len(store.keys()) != 3 {
		t.Errorf("expected 3 stored objects, got %d", len(store.keys()))
	}
}

func TestUploadBatch_DispatchesConcurrently(t *testing.T) {
	const n = 5
	var (
		mu      sync.Mutex
		arrived int
		release = make(chan struct{})
	)

	store := newFakeStorage()
	store.beforeUpload = func(string) error {
		mu.Lock()
		arrived++
		if arrived == n {
			close(release)
		}
		mu.Unlock()

		// Every upload blocks until all n are in flight
		select {
		case <-release:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("uploads were not dispatched concurrently")
		}
	}
	svc := newTestBatchService(store, nil)

	files := make([]domain.FilePayload, n)
	for i := range files {
		files[i] = textPayload(fmt.Sprintf("f%d.txt", i), "x")
	}

	result, err := svc.UploadBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("expected all uploads to succeed, got failures: %+v", result.Failed)
	}
}

func TestUploadBatch_IsolatesPanicsAndOpenErrors(t *testing.T) {
	store := newFakeStorage()
	store.beforeUpload = func(key string) error {
		if strings.HasSuffix(key, "-explode.txt") {
			panic("backend client bug")
		}
		return nil
	}
	svc := newTestBatchService(store, nil)

	unreadable := domain.FilePayload{
		FileName:    "broken.txt",
		ContentType: "text/plain",
		Size:        3,
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("temp file vanished")
		},
	}

	result, err := svc.UploadBatch(context.Background(), []domain.FilePayload{
		textPayload("ok.txt", "fine"),
		textPayload("explode.txt", "boom"),
		unreadable,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome() != domain.BatchPartial {
		t.Errorf("expected partial outcome, got %s", result.Outcome())
	}
	if len(result.Successful) != 1 || result.Successful[0].OriginalName != "ok.txt" {
		t.Errorf("expected ok.txt to succeed, got %+v", result.Successful)
	}

	errs := make(map[string]string)
	for _, f := range result.Failed {
		errs[f.OriginalName] = f.Error
	}
	if !strings.Contains(errs["explode.txt"], "backend client bug") {
		t.Errorf("expected panic message for explode.txt, got %q", errs["explode.txt"])
	}
	if !strings.Contains(errs["broken.txt"], "temp file vanished") {
		t.Errorf("expected open error for broken.txt, got %q", errs["broken.txt"])
	}
}

func TestUploadBatch_RejectsBeforeDispatch(t *testing.T) {
	store := newFakeStorage()
	svc := newTestBatchService(store, nil)

	if _, err := svc.UploadBatch(context.Background(), nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}

	files := make([]domain.FilePayload, 11)
	for i := range files {
		files[i] = textPayload(fmt.Sprintf("f%d.txt", i), "x")
	}
	if _, err := svc.UploadBatch(context.Background(), files); !errors.Is(err, ErrTooManyFiles) {
		t.Errorf("expected ErrTooManyFiles, got %v", err)
	}
	if len(store.keys()) != 0 {
		t.Errorf("rejected batch must not store anything, got %d objects", len(store.keys()))
	}
}

func TestUploadBatch_OversizedFileFailsAlone(t *testing.T) {
	store := newFakeStorage()
	svc := NewBatchService(store, nil, testLogger(), &BatchConfig{
		KeyPrefix:   "uploads/",
		MaxFiles:    10,
		MaxFileSize: 4,
	})

	big := textPayload("big.bin", "12345")
	// Declared size lies; the limit must still hold on the bytes read
	big.Size = 1

	result, err := svc.UploadBatch(context.Background(), []domain.FilePayload{
		textPayload("small.txt", "1234"),
		big,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Successful) != 1 || len(result.Failed) != 1 {
		t.Fatalf("expected one success and one failure, got %+v", result)
	}
	if !strings.Contains(result.Failed[0].Error, ErrFileTooLarge.Error()) {
		t.Errorf("expected size error, got %q", result.Failed[0].Error)
	}
}

func TestUploadBatch_RecordsAuditTrail(t *testing.T) {
	store := newFakeStorage()
	store.beforeUpload = func(key string) error {
		if strings.HasSuffix(key, "-b.txt") {
			return errors.New("quota exceeded")
		}
		return nil
	}
	recorder := &fakeRecorder{}
	svc := newTestBatchService(store, recorder)

	result, err := svc.UploadBatch(context.Background(), []domain.FilePayload{
		textPayload("a.txt", "a"),
		textPayload("b.txt", "b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorder.records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(recorder.records))
	}
	for _, rec := range recorder.records {
		if rec.BatchID != result.BatchID {
			t.Errorf("expected batch id %q, got %q", result.BatchID, rec.BatchID)
		}
		switch rec.OriginalName {
		case "a.txt":
			if rec.Status != domain.UploadStatusSucceeded || rec.Key == "" {
				t.Errorf("unexpected record for a.txt: %+v", rec)
			}
		case "b.txt":
			if rec.Status != domain.UploadStatusFailed || rec.Error != "quota exceeded" {
				t.Errorf("unexpected record for b.txt: %+v", rec)
			}
		}
	}
}

func TestUploadBatch_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	store := newFakeStorage()
	svc := newTestBatchService(store, &fakeRecorder{err: errors.New("database is locked")})

	result, err := svc.UploadBatch(context.Background(), []domain.FilePayload{textPayload("a.txt", "a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome() != domain.BatchAllSucceeded {
		t.Errorf("expected all succeeded, got %s", result.Outcome())
	}
}

func TestUploadBatch_CallerCancellationDoesNotAbortItems(t *testing.T) {
	store := newFakeStorage()
	started := make(chan string, 2)
	release := make(chan struct{})
	store.uploadWait = func(ctx context.Context) error {
		started <- logger.GetBatchID(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
			return nil
		}
	}
	recorder := &fakeRecorder{}
	svc := newTestBatchService(store, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.BatchUploadResult, 1)
	go func() {
		result, err := svc.UploadBatch(ctx, []domain.FilePayload{
			textPayload("a.txt", "a"),
			textPayload("b.txt", "b"),
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- result
	}()

	batchIDs := []string{<-started, <-started}
	cancel()
	// Give a context-bound upload the chance to observe the cancellation first
	time.Sleep(20 * time.Millisecond)
	close(release)

	var result *domain.BatchUploadResult
	select {
	case result = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not settle")
	}
	if result == nil {
		t.Fatal("expected a result")
	}

	if result.Outcome() != domain.BatchAllSucceeded {
		t.Fatalf("expected all succeeded after caller cancellation, got %s (failed: %+v)", result.Outcome(), result.Failed)
	}
	for _, id := range batchIDs {
		if id != result.BatchID {
			t.Errorf("expected batch id %q in item context, got %q", result.BatchID, id)
		}
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.records) != 2 {
		t.Fatalf("expected 2 audit records, got %d", len(recorder.records))
	}
	for _, err := range recorder.ctxErrs {
		if err != nil {
			t.Errorf("audit write ran on a cancelled context: %v", err)
		}
	}
}

func TestSignURLs(t *testing.T) {
	store := newFakeStorage()
	store.presignErr = func(key string) error {
		if key == "b" {
			return errors.New("invalid object key")
		}
		return nil
	}
	svc := newTestBatchService(store, nil)

	results, err := svc.SignURLs(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Key != "a" || results[0].URL == "" || results[0].Error != "" {
		t.Errorf("unexpected result for a: %+v", results[0])
	}
	if results[1].Key != "b" || results[1].URL != "" || results[1].Error == "" {
		t.Errorf("unexpected result for b: %+v", results[1])
	}
	for _, e := range store.expiries {
		if e != time.Hour {
			t.Errorf("expected batch expiry 1h, got %s", e)
		}
	}

	if _, err := svc.SignURLs(context.Background(), []string{}); !errors.Is(err, ErrNoKeys) {
		t.Errorf("expected ErrNoKeys, got %v", err)
	}
}
