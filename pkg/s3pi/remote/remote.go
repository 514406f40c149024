// Package remote is the thin adapter between the index pipeline and the
// object store holding the published package index.
package remote

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable reports that the remote store could not be reached at
// all: missing or invalid credentials, or an unreachable endpoint. It is
// the only remote condition that crosses the adapter boundary as a hard
// error; absence of an object is always a normal negative result.
var ErrUnavailable = errors.New("remote storage unavailable")

// Store is the object-store contract the planner and runner depend on.
type Store interface {
	// Exists reports whether an object exists under key. A missing
	// object is (false, nil), never an error.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys of all objects under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Download fetches an object into localPath, creating parent
	// directories as needed.
	Download(ctx context.Context, key, localPath string) error

	// Upload stores the file at localPath under key with public-read
	// access.
	Upload(ctx context.Context, localPath, key string) error
}

// EnsureTrailingSlash returns s ending in exactly one slash. The key
// prefix the index tree lives under always carries one, so keys can be
// formed by plain concatenation.
func EnsureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
