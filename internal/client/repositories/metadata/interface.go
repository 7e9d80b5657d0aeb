// Package metadata is a small key/value table in the local state database.
// The client keeps its session credentials here.
package metadata

import (
	"context"
)

// Repository reads and writes opaque values by key.
type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}
