// Package errors provides structured error types for tensionlab.
//
// The diagram core never surfaces errors to the user: bad geometry yields a
// defined zero result and bad persisted state falls through to the next
// source. The codes here exist so that the layers doing that fall-through
// can log why a source was rejected, and so that the CLI and HTTP shells can
// report their own I/O failures consistently.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures
//   - INCOMPLETE_STATE: A persisted state is missing fields
//   - STORAGE_*: Storage backend failures (always swallowed by sessions)
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeIncompleteState, "missing field %q", "p0x")
//	if errors.Is(err, errors.ErrCodeIncompleteState) {
//	    // fall through to the next source
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorageUnavailable, origErr, "write %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidState    Code = "INVALID_STATE"
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidCanvas   Code = "INVALID_CANVAS"
	ErrCodeInvalidSession  Code = "INVALID_SESSION"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Persisted state errors
	ErrCodeIncompleteState Code = "INCOMPLETE_STATE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Storage errors
	ErrCodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
