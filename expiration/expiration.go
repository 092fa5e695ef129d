// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/cacheprovider/types"
)

/*
Strategy decides when an entry is dead and how reads and writes move its
expiry. Strategies are called under the owning store's lock.
*/
type Strategy interface {

	// IsExpired checks if the entry is expired at now.
	IsExpired(*types.CacheEntry, time.Time) bool

	// OnAccess is called whenever an entry is read successfully.
	OnAccess(*types.CacheEntry, time.Time)

	// OnWrite is called whenever an entry is written or replaced.
	OnWrite(*types.CacheEntry, time.Time)
}

// FixedTTL expires an entry exactly TTL after it was written. Reads never
// extend its life. This is the default strategy.
type FixedTTL struct{}

func (FixedTTL) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	return ent.Expired(now)
}

func (FixedTTL) OnAccess(ent *types.CacheEntry, now time.Time) {
	ent.LastAccessedAt = now
}

func (FixedTTL) OnWrite(ent *types.CacheEntry, now time.Time) {
	ent.CreatedAt = now
	ent.LastAccessedAt = now
	ent.ExpiresAt = now.Add(ent.TTL)
}
