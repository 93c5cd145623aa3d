package storage

import (
	"context"
	"time"
)

// NullBackend is a no-op backend that never stores anything.
// Useful for testing or when persistence should be disabled.
type NullBackend struct{}

// NewNullBackend creates a null backend.
func NewNullBackend() Backend {
	return &NullBackend{}
}

// Get always returns a miss.
func (b *NullBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (b *NullBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (b *NullBackend) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (b *NullBackend) Close() error {
	return nil
}

// Ensure NullBackend implements Backend.
var _ Backend = (*NullBackend)(nil)

// DisabledBackend fails every operation with ErrUnavailable.
type DisabledBackend struct{}

// NewDisabledBackend creates a backend that refuses all access.
func NewDisabledBackend() Backend {
	return &DisabledBackend{}
}

// Get fails with ErrUnavailable.
func (b *DisabledBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

// Set fails with ErrUnavailable.
func (b *DisabledBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return ErrUnavailable
}

// Delete fails with ErrUnavailable.
func (b *DisabledBackend) Delete(ctx context.Context, key string) error {
	return ErrUnavailable
}

// Close does nothing.
func (b *DisabledBackend) Close() error {
	return nil
}

var _ Backend = (*DisabledBackend)(nil)
