// Package storage defines the object storage capability the facade delegates to.
// Swap implementations by changing the concrete type injected at startup:
// MinioStorage works with any S3-compatible provider, PostgresStorage keeps
// objects in a table, MemoryStorage serves tests and local development.
package storage

import (
	"context"
	"io"
	"strings"
	"time"
)

// Separator splits flat object keys into virtual path segments.
const Separator = "/"

// Object describes a single stored item.
type Object struct {
	Key          string            `json:"name"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"contentType,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	LastModified time.Time         `json:"updated"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// IsFolderMarker reports whether the object is a zero-length directory placeholder.
func (o Object) IsFolderMarker() bool {
	return strings.HasSuffix(o.Key, Separator)
}

// Storage is the interface for listing, writing, deleting and renaming objects.
type Storage interface {
	// List returns every object whose key starts with prefix ("" lists the bucket).
	List(ctx context.Context, prefix string) ([]Object, error)
	// Upload streams data to the store under the given key.
	// size is the exact byte count, or -1 when unknown.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// Rename moves a single object from oldKey to newKey.
	Rename(ctx context.Context, oldKey, newKey string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
