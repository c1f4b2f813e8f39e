// Package kv defines the durable key-value contract the entity repository
// persists through, plus the in-process drivers. Values are opaque JSON
// blobs; the repository owns serialization and key layout.
package kv

import "context"

// Store is implemented by every persistence driver. Reads are total: a
// missing key is reported through ok=false, never through an error. Writes
// fail loudly so callers can surface retries.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
