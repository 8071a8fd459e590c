// Package blob stores report artifacts (source code, markdown reports and
// JSON summaries) for archived runs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Storage abstracts blob storage for run artifacts.
type Storage interface {
	// PutReport stores one artifact of a run and returns a reference to it.
	PutReport(ctx context.Context, runID, name string, data []byte) (string, error)
	// GetReport retrieves an artifact written by PutReport.
	GetReport(ctx context.Context, runID, name string) ([]byte, error)
}

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Options selects and configures a backend for Open.
type Options struct {
	Backend  string // local, s3, gcs or none
	Path     string
	Bucket   string
	Region   string
	Endpoint string
}

// Open creates the Storage named by opts.Backend.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case "local", "":
		if opts.Path == "" {
			return nil, fmt.Errorf("local blob storage requires a path")
		}
		return NewLocalStorage(opts.Path), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    opts.Bucket,
			Region:    opts.Region,
			Endpoint:  opts.Endpoint,
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
	case "gcs":
		return NewGCSStorage(ctx, opts.Bucket)
	case "none":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unsupported blob backend: %s", opts.Backend)
	}
}

// objectKey validates the run and artifact names and joins them.
func objectKey(runID, name string) (string, error) {
	for _, part := range []string{runID, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid artifact path component %q", part)
		}
	}
	return path.Join("runs", runID, name), nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// LocalStorage implements Storage using the local filesystem.
// Useful for development and single-node deployments.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) PutReport(ctx context.Context, runID, name string, data []byte) (string, error) {
	key, err := objectKey(runID, name)
	if err != nil {
		return "", err
	}
	p := filepath.Join(s.BaseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return "file://" + filepath.ToSlash(p), nil
}

func (s *LocalStorage) GetReport(ctx context.Context, runID, name string) ([]byte, error) {
	key, err := objectKey(runID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.BaseDir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Discard drops every artifact. Used when archiving is disabled.
type Discard struct{}

func (Discard) PutReport(context.Context, string, string, []byte) (string, error) { return "", nil }

func (Discard) GetReport(_ context.Context, runID, name string) ([]byte, error) {
	return nil, fmt.Errorf("runs/%s/%s: %w", runID, name, ErrNotFound)
}
