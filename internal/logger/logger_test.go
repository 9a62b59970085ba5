package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != GetDefault() {
		t.Error("expected default logger for empty context")
	}
}

func TestWithFields_PropagatesThroughContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "bucketgate-test"})

	ctx := base.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetBatchID(ctx, "batch-1")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("expected request id req-1, got %q", got)
	}
	if got := GetBatchID(ctx); got != "batch-1" {
		t.Errorf("expected batch id batch-1, got %q", got)
	}

	With(Fields{FieldCount: 3}).Info(ctx, "Batch settled: %s", "ok")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "Batch settled: ok" {
		t.Errorf("unexpected message %v", line["message"])
	}
	if line[FieldBatchID] != "batch-1" || line[FieldRequestID] != "req-1" {
		t.Errorf("context fields missing from log line: %v", line)
	}
	if line[FieldCount] != float64(3) {
		t.Errorf("expected count 3, got %v", line[FieldCount])
	}
	if line["service"] != "bucketgate-test" {
		t.Errorf("expected service field, got %v", line["service"])
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_MAX_SIZE", "not-a-number")
	t.Setenv("SERVICE_NAME", "")

	cfg := LoadFromEnv()
	if cfg.Level != "warn" {
		t.Errorf("expected level warn, got %q", cfg.Level)
	}
	if cfg.MaxSize != 100 {
		t.Errorf("expected invalid int to fall back to 100, got %d", cfg.MaxSize)
	}
	if cfg.ServiceName != "bucketgate" {
		t.Errorf("expected default service name, got %q", cfg.ServiceName)
	}
}
