package storage

import (
	"context"
	"io"
)

// ObjectStorage is where raw uploaded import files are archived so an audit
// row can always be traced back to the exact bytes that were loaded.
type ObjectStorage interface {
	// Upload stores an object under the given key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves a previously archived object
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete removes an object
	Delete(ctx context.Context, key string) error
}
