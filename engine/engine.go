package engine

import (
	"time"

	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/refresh"
	"github.com/krisalay/cacheprovider/types"
)

/*
CacheEngine is the policy layer of the local store.
It decides behavior, NOT storage.

It decides:
- When an entry is expired
- How reads and writes move an entry's expiry
- When refresh hooks are triggered
- How events are recorded in metrics

It does NOT:
- Store data
- Handle locking
- Decide eviction order
*/
type CacheEngine struct {

	// Expiration controls when an entry is dead. Never nil.
	Expiration expiration.Strategy

	// Refresh is an optional hook run after successful reads.
	Refresh refresh.Hook

	// Metrics records hits, misses, evictions, expirations and refreshes.
	// Never nil.
	Metrics types.Metrics

	// Clock returns the current time. Tests replace it to step over TTLs
	// without sleeping.
	Clock func() time.Time
}

/*
NewCacheEngine creates a CacheEngine, filling in defaults for nil arguments:
fixed TTL expiration, no-op metrics and the wall clock.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	hook refresh.Hook,
	metrics types.Metrics,
	clock func() time.Time,
) *CacheEngine {
	if exp == nil {
		exp = expiration.FixedTTL{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if clock == nil {
		clock = time.Now
	}

	return &CacheEngine{
		Expiration: exp,
		Refresh:    hook,
		Metrics:    metrics,
		Clock:      clock,
	}
}

// Now returns the engine's notion of the current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock()
}

// IsExpired delegates to the expiration strategy.
func (e *CacheEngine) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	return e.Expiration.IsExpired(ent, now)
}

// OnRead applies read-side expiration rules. Called under the store lock.
func (e *CacheEngine) OnRead(ent *types.CacheEntry, now time.Time) {
	e.Expiration.OnAccess(ent, now)
}

// OnWrite applies write-side expiration rules. Called under the store lock.
func (e *CacheEngine) OnWrite(ent *types.CacheEntry, now time.Time) {
	e.Expiration.OnWrite(ent, now)
}

/*
AfterRead runs the refresh hook with a snapshot of the entry that was just
returned. It is called outside the store lock so a slow hook cannot stall
other callers.
*/
func (e *CacheEngine) AfterRead(key string, snapshot types.CacheEntry) {
	if e.Refresh == nil {
		return
	}
	if e.Refresh.OnRead(key, snapshot) {
		e.Metrics.Refresh()
	}
}
