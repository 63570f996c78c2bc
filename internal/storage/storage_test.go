package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("20240101-0d9a.png"))
	for _, key := range []string{"", "  ", "a/b", `a\b`, "..", "x..y"} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, "key %q", key)
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "/static/uploads/a.png", JoinURL("/static/uploads", "a.png"))
	assert.Equal(t, "/static/uploads/a.png", JoinURL("/static/uploads/", "a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", JoinURL("https://cdn.example.com//", "a.png"))
	assert.Equal(t, "/a.png", JoinURL("", "a.png"))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Backend: "fs", Key: "a.png", Op: "put", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage operation put failed for key a.png on backend fs: disk full", err.Error())
}
