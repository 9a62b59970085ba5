package localdir

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestFetchBatch_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"c.png":   "ccc",
		"a.txt":   "a",
		"b.jpg":   "bb",
		".hidden": "x",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	a := NewAdapter(dir, false)
	if n, err := a.Len(); err != nil || n != 3 {
		t.Fatalf("Len = %d, %v", n, err)
	}

	first, cursor, err := a.FetchBatch(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(first) != 2 || cursor != "2" {
		t.Fatalf("got %d files, cursor %q", len(first), cursor)
	}
	if first[0].FileName != "a.txt" || first[1].FileName != "b.jpg" {
		t.Errorf("order = %s, %s", first[0].FileName, first[1].FileName)
	}
	if first[1].ContentType != "image/jpeg" || first[1].Size != 2 {
		t.Errorf("b.jpg = %+v", first[1])
	}

	second, cursor, err := a.FetchBatch(context.Background(), cursor, 2)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(second) != 1 || cursor != "" || second[0].FileName != "c.png" {
		t.Fatalf("second batch = %d files, cursor %q", len(second), cursor)
	}

	rc, err := second[0].Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "ccc" {
		t.Errorf("content = %q", data)
	}
}

func TestFetchBatch_Manifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"one.bin":  "1",
		"two.bin":  "22",
		"skip.txt": "not listed",
		ManifestFileName: `{"filename":"two.bin","content_type":"application/x-two"}
not json
{"filename":"missing.bin"}

{"filename":"one.bin"}
`,
	})

	files, cursor, err := NewAdapter(dir, true).FetchBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if cursor != "" || len(files) != 2 {
		t.Fatalf("got %d files, cursor %q", len(files), cursor)
	}
	if files[0].FileName != "one.bin" || files[0].ContentType != "application/octet-stream" {
		t.Errorf("first = %+v", files[0])
	}
	if files[1].FileName != "two.bin" || files[1].ContentType != "application/x-two" {
		t.Errorf("second = %+v", files[1])
	}
}

func TestFetchBatch_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	if _, _, err := NewAdapter(dir, false).FetchBatch(context.Background(), "abc", 1); err == nil {
		t.Error("expected error for malformed cursor")
	}
	if _, _, err := NewAdapter(dir, true).FetchBatch(context.Background(), "", 1); err == nil {
		t.Error("expected error for missing manifest")
	}
	if _, _, err := NewAdapter(filepath.Join(dir, "nope"), false).FetchBatch(context.Background(), "", 1); err == nil {
		t.Error("expected error for missing directory")
	}

	files, cursor, err := NewAdapter(dir, false).FetchBatch(context.Background(), "5", 1)
	if err != nil || len(files) != 0 || cursor != "" {
		t.Errorf("past end = %d files, cursor %q, err %v", len(files), cursor, err)
	}
}

func TestFetchBatch_ManifestStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "src")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, map[string]string{"secret.txt": "do not upload"})
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, filepath.Join(dir, "nested"), map[string]string{"ok.txt": "fine"})
	writeFiles(t, dir, map[string]string{
		ManifestFileName: `{"filename":"../secret.txt"}
{"filename":"nested/../../secret.txt"}
{"filename":"."}
{"filename":"nested/ok.txt"}
`,
	})

	files, _, err := NewAdapter(dir, true).FetchBatch(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(files) != 1 || files[0].FileName != "ok.txt" {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.FileName
		}
		t.Fatalf("expected only nested/ok.txt, got %v", names)
	}
}

func TestStat_RejectsEscapingNames(t *testing.T) {
	a := NewAdapter(t.TempDir(), true)
	for _, name := range []string{"../x", "../../etc/passwd", "a/../../x"} {
		if _, err := a.stat(name, ""); !errors.Is(err, ErrOutsideDir) {
			t.Errorf("stat(%q) = %v, want ErrOutsideDir", name, err)
		}
	}
}
