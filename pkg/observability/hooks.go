// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hooks; the CLI decides at
// startup whether anything listens. The default hooks do nothing, so library
// code never depends on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheusHooks()
//	    observability.SetSimulationHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	    _ = m.WriteTextfile("coalsim.prom")
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Simulation().OnSimulateStart(ctx, n)
//	// ... simulate ...
//	observability.Simulation().OnSimulateComplete(ctx, n, mutations, tmrca, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from the simulation pipeline.
type SimulationHooks interface {
	// OnSimulateStart is called before a single genealogy is simulated.
	OnSimulateStart(ctx context.Context, n int)

	// OnSimulateComplete is called after a single genealogy is simulated or
	// restored from cache. tmrca and mutations are zero when err is set.
	OnSimulateComplete(ctx context.Context, n, mutations int, tmrca float64, duration time.Duration, err error)

	// OnBatchComplete is called after a replicate batch finishes.
	OnBatchComplete(ctx context.Context, replicates int, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnSimulateStart(context.Context, int) {}
func (NoopSimulationHooks) OnSimulateComplete(context.Context, int, int, float64, time.Duration, error) {
}
func (NoopSimulationHooks) OnBatchComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	simulationHooks SimulationHooks = NoopSimulationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	hooksMu         sync.RWMutex
)

// SetSimulationHooks registers custom simulation hooks.
// This should be called once at application startup before any simulation.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulationHooks = h
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

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	simulationHooks = NoopSimulationHooks{}
	cacheHooks = NoopCacheHooks{}
}
