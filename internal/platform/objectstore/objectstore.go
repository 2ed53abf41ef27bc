// Package objectstore keeps uploaded blobs on local disk or in a GCS bucket.
package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrObjectNotFound = errors.New("object not found")

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent: a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Mode() Mode
}

// validKey rejects keys that could escape the store root.
func validKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return false
		}
	}
	return true
}
