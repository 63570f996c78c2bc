package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panlogistics/blog/internal/storage"
	"github.com/panlogistics/blog/internal/storage/fs"
)

func TestBackendPutAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	backend, err := fs.New(fs.Config{BaseDir: dir, URLPath: "/static/uploads/"})
	require.NoError(t, err)
	assert.Equal(t, "fs", backend.Name())

	url, err := backend.Put(context.Background(), "20240101-abc.png", strings.NewReader("image-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/20240101-abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "20240101-abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, backend.Delete(context.Background(), "20240101-abc.png"))
	_, err = os.Stat(filepath.Join(dir, "20240101-abc.png"))
	assert.True(t, os.IsNotExist(err))

	// 再次删除不存在的文件不报错
	assert.NoError(t, backend.Delete(context.Background(), "20240101-abc.png"))
}

func TestBackendRejectsUnsafeKeys(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.png", "nested/file.png", `dir\file.png`} {
		_, err := backend.Put(context.Background(), key, strings.NewReader("x"), "")
		require.Error(t, err, "key %q", key)

		var storageErr *storage.Error
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, "put", storageErr.Op)
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
	}
}

func TestBackendPutHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{BaseDir: dir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = backend.Put(ctx, "file.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "file.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}
