package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrInvalidKey indicates an object key that cannot be stored safely.
	ErrInvalidKey = errors.New("invalid object key")
)

// BlobStore stores uploaded media bytes and hands back the public URL for them.
type BlobStore interface {
	// Name is the backend name used in logs and errors.
	Name() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// Error represents a failed blob storage operation.
type Error struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidateKey rejects empty keys and keys that could escape the storage root.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// JoinURL joins a base URL or path with an object key using exactly one slash.
func JoinURL(base, key string) string {
	trimmed := strings.TrimRight(base, "/")
	if trimmed == "" {
		return "/" + key
	}
	return trimmed + "/" + key
}
