package storage

import (
	"context"
	"fmt"
	"time"
)

// quotaBackend rejects writes larger than a fixed size, the way browser
// storage rejects writes past its quota.
type quotaBackend struct {
	Backend
	maxBytes int
}

// WithQuota wraps b so that Set fails with ErrQuotaExceeded for blobs
// larger than maxBytes. A non-positive maxBytes returns b unchanged.
func WithQuota(b Backend, maxBytes int) Backend {
	if maxBytes <= 0 {
		return b
	}
	return &quotaBackend{Backend: b, maxBytes: maxBytes}
}

func (q *quotaBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if len(data) > q.maxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, len(data), q.maxBytes)
	}
	return q.Backend.Set(ctx, key, data, ttl)
}
