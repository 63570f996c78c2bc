package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/panlogistics/blog/internal/storage"
)

const backendName = "fs"

// Config options for the file system backend
type Config struct {
	BaseDir string // directory files are written to
	URLPath string // public path the directory is served under
}

// Backend writes media into a local directory served as static files.
type Backend struct {
	baseDir string
	urlPath string
}

// New creates the base directory when missing and returns the backend.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir, urlPath: config.URLPath}, nil
}

func (b *Backend) Name() string {
	return backendName
}

// Put writes the object to disk. A partially written file is removed on failure.
func (b *Backend) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}

	path := filepath.Join(b.baseDir, key)
	file, err := os.Create(path)
	if err != nil {
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(path)
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", &storage.Error{Backend: backendName, Key: key, Op: "put", Err: err}
	}

	return storage.JoinURL(b.urlPath, key), nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return &storage.Error{Backend: backendName, Key: key, Op: "delete", Err: err}
	}
	if err := os.Remove(filepath.Join(b.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return &storage.Error{Backend: backendName, Key: key, Op: "delete", Err: err}
	}
	return nil
}
