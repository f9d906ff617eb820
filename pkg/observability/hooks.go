// Package observability provides hooks for metrics and logging.
//
// Library packages emit events through small hook interfaces; the binary
// decides what receives them. The defaults are no-ops, so the resolver and
// the repository manager carry no hard dependency on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetResolveHooks(m)
//	    observability.SetCacheHooks(m)
//	    observability.SetTransferHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolve().OnResolveStart(ctx, len(roots))
//	// ... resolve ...
//	observability.Resolve().OnResolveComplete(ctx, len(artifacts), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from dependency resolution.
type ResolveHooks interface {
	OnResolveStart(ctx context.Context, roots int)
	OnResolveComplete(ctx context.Context, artifacts int, duration time.Duration, err error)

	// OnConflict records a candidate dropped in favour of an earlier or
	// nearer version of the same artifact.
	OnConflict(ctx context.Context, key, kept, dropped string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Transfer Hooks
// =============================================================================

// TransferHooks receives events from repository transports.
type TransferHooks interface {
	// OnRequest records an outgoing request to a repository.
	OnRequest(ctx context.Context, method, repo, path string)

	// OnResponse records a completed request.
	OnResponse(ctx context.Context, method, repo, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure (network failure, timeout).
	OnError(ctx context.Context, method, repo, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(context.Context, int)                          {}
func (NoopResolveHooks) OnResolveComplete(context.Context, int, time.Duration, error) {}
func (NoopResolveHooks) OnConflict(context.Context, string, string, string)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopTransferHooks is a no-op implementation of TransferHooks.
type NoopTransferHooks struct{}

func (NoopTransferHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopTransferHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopTransferHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolveHooks  ResolveHooks  = NoopResolveHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	transferHooks TransferHooks = NoopTransferHooks{}
	hooksMu       sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetTransferHooks registers custom transfer hooks.
// This should be called once at application startup before any transfers.
func SetTransferHooks(h TransferHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		transferHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Transfer returns the registered transfer hooks.
func Transfer() TransferHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return transferHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
	cacheHooks = NoopCacheHooks{}
	transferHooks = NoopTransferHooks{}
}
