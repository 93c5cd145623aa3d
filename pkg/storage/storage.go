// Package storage provides key-value backends for the persisted diagram blob.
//
// A diagram session keeps at most one small blob per session key. Backends
// only need to get, set and delete opaque bytes; the session layer decides
// what goes in them and treats every backend failure as best-effort.
//
// Implementations:
//   - [FileBackend]: one file per key under a directory (CLI, TUI)
//   - [MemoryBackend]: in-process map (tests, single-instance server)
//   - [RedisBackend]: Redis, for servers running several instances
//   - [MongoBackend]: a MongoDB collection, for durable server storage
//   - [NullBackend]: never stores anything
//   - [DisabledBackend]: fails every call, like a browser with storage turned off
//
// [WithQuota] and [Instrument] wrap any backend.
package storage

import (
	"context"
	"time"
)

// Backend stores opaque blobs by key.
type Backend interface {
	// Get returns the blob for key. A missing or expired key is a miss
	// (hit == false) with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
