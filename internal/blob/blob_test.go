package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLocalStoragePutGetReport(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte("# Report\n")
	ref, err := s.PutReport(ctx, "run1", "report.md", data)
	if err != nil {
		t.Fatalf("PutReport: %v", err)
	}
	if !strings.HasPrefix(ref, "file://") {
		t.Errorf("ref = %q, want file:// prefix", ref)
	}

	got, err := s.GetReport(ctx, "run1", "report.md")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetReport = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "runs", "run1", "report.md")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.GetReport(context.Background(), "run1", "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	for _, tc := range []struct{ runID, name string }{
		{"..", "report.md"},
		{"run1", "../escape.md"},
		{"run1", ""},
		{"a/b", "report.md"},
	} {
		if _, err := s.PutReport(ctx, tc.runID, tc.name, []byte("x")); err == nil {
			t.Errorf("PutReport(%q, %q): expected error", tc.runID, tc.name)
		}
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"summary.json": "application/json",
		"report.md":    "text/markdown; charset=utf-8",
		"original.txt": "text/plain; charset=utf-8",
	}
	for name, want := range cases {
		if got := contentType(name); got != want {
			t.Errorf("contentType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "local", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open local: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("expected *LocalStorage, got %T", s)
	}

	s, err = Open(ctx, Options{Backend: "none"})
	if err != nil {
		t.Fatalf("Open none: %v", err)
	}
	if ref, err := s.PutReport(ctx, "r", "a.txt", nil); err != nil || ref != "" {
		t.Errorf("Discard.PutReport = %q, %v", ref, err)
	}

	if _, err := Open(ctx, Options{Backend: "local"}); err == nil {
		t.Error("expected error for local backend without path")
	}
	if _, err := Open(ctx, Options{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestS3StoragePutGet(t *testing.T) {
	var (
		mu      sync.Mutex
		objects = map[string][]byte{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
				return
			}
			_, _ = w.Write(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	ctx := context.Background()
	s, err := NewS3Storage(ctx, S3Config{
		Bucket:    "reports",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test-access-key",
		SecretKey: "test-secret-key",
	})
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}

	ref, err := s.PutReport(ctx, "run1", "summary.json", []byte(`{"score":80}`))
	if err != nil {
		t.Fatalf("PutReport: %v", err)
	}
	if ref != "s3://reports/runs/run1/summary.json" {
		t.Errorf("ref = %q", ref)
	}

	mu.Lock()
	_, stored := objects["/reports/runs/run1/summary.json"]
	mu.Unlock()
	if !stored {
		t.Fatalf("object not stored at path-style key; have %v", objects)
	}

	if _, err := s.GetReport(ctx, "run1", "absent.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3StorageRequiresBucket(t *testing.T) {
	if _, err := NewS3Storage(context.Background(), S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}
