package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer maps a session identifier to the storage key of its blob.
type Keyer interface {
	StateKey(sessionID string) string
}

// DefaultKeyer produces keys of the form "state:<id>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StateKey returns the blob key for a session.
func (DefaultKeyer) StateKey(sessionID string) string {
	return "state:" + sessionID
}

// ScopedKeyer wraps a Keyer with a prefix so several applications or
// tenants can share one backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tensionlab:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// StateKey returns the prefixed blob key for a session.
func (k *ScopedKeyer) StateKey(sessionID string) string {
	return k.prefix + k.inner.StateKey(sessionID)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
