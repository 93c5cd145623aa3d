package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidState, "%s is not a finite number", name)
	}
	return nil
}

// ValidateCanvas checks that a canvas has a positive, finite size.
func ValidateCanvas(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) || d.v <= 0 {
			return New(ErrCodeInvalidCanvas, "canvas %s must be a positive number, got %v", d.name, d.v)
		}
	}
	return nil
}

// ValidateSessionID validates a client-supplied session identifier before it
// becomes part of a storage key.
//
// The rules are conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSession, "session id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidSession, "session id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSession, "session id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidSession, "session id contains invalid characters: %q", pattern)
		}
	}

	return nil
}
