package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureTrailingSlash(t *testing.T) {
	assert.Equal(t, "a/b/", EnsureTrailingSlash("a/b"))
	assert.Equal(t, "a/b/", EnsureTrailingSlash("a/b/"))
	assert.Equal(t, "simple/", EnsureTrailingSlash("simple"))
	assert.Equal(t, "/", EnsureTrailingSlash(""))
}

func TestEnsureTrailingSlashIdempotent(t *testing.T) {
	once := EnsureTrailingSlash("simple")
	assert.Equal(t, once, EnsureTrailingSlash(once))
}
