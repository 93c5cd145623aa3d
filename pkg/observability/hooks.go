// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about diagram sessions, storage operations, and HTTP
// requests served by the API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSessionHooks(&mySessionHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Session().OnResolve(ctx, sessionID, "url")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from diagram sessions.
type SessionHooks interface {
	// OnResolve records which source ("url", "storage" or "defaults") won at load.
	OnResolve(ctx context.Context, sessionID, source string)

	// OnSave records a blob write.
	OnSave(ctx context.Context, sessionID string, size int)

	// OnSaveSkipped records a save that found the stored blob unchanged.
	OnSaveSkipped(ctx context.Context, sessionID string)

	// OnReset records a reset to defaults.
	OnReset(ctx context.Context, sessionID string)

	// OnStorageError records a swallowed persistence failure.
	OnStorageError(ctx context.Context, sessionID, op string, err error)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from storage backends wrapped with storage.Instrument.
type StorageHooks interface {
	// OnHit records a successful read.
	OnHit(ctx context.Context, backend string)

	// OnMiss records a read that found nothing.
	OnMiss(ctx context.Context, backend string)

	// OnWrite records a write attempt.
	OnWrite(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnResolve(context.Context, string, string)             {}
func (NoopSessionHooks) OnSave(context.Context, string, int)                   {}
func (NoopSessionHooks) OnSaveSkipped(context.Context, string)                 {}
func (NoopSessionHooks) OnReset(context.Context, string)                       {}
func (NoopSessionHooks) OnStorageError(context.Context, string, string, error) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnHit(context.Context, string)                             {}
func (NoopStorageHooks) OnMiss(context.Context, string)                            {}
func (NoopStorageHooks) OnWrite(context.Context, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sessionHooks SessionHooks = NoopSessionHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetSessionHooks registers custom session hooks.
// This should be called once at application startup.
func SetSessionHooks(h SessionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sessionHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Session returns the registered session hooks.
func Session() SessionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sessionHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sessionHooks = NoopSessionHooks{}
	storageHooks = NoopStorageHooks{}
	httpHooks = NoopHTTPHooks{}
}
