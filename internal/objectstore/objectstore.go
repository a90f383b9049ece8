// Package objectstore defines the gateway to the blob store holding raw
// dataset objects, preprocessed data and training artifacts.
package objectstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the blob store interface. Keys are paths within a single
// configured bucket.
type Store interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Count(ctx context.Context, prefix string) (int, error)
	ListPrefixes(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
