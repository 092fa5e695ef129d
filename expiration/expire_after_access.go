package expiration

import (
	"time"

	"github.com/krisalay/cacheprovider/types"
)

/*
ExpireAfterAccess implements "sliding TTL". Every read pushes the expiry
forward by the entry's own TTL, so data that keeps getting used stays alive
and data nobody touches expires.

MaxAge, when positive, caps the total lifetime measured from CreatedAt so a
hot key is still refreshed from its source eventually.
*/
type ExpireAfterAccess struct {
	MaxAge time.Duration
}

// IsExpired checks the sliding deadline and the optional hard cap.
func (e *ExpireAfterAccess) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	if ent.Expired(now) {
		return true
	}
	return e.MaxAge > 0 && now.Sub(ent.CreatedAt) > e.MaxAge
}

// OnAccess pushes ExpiresAt to now + the entry's TTL.
func (e *ExpireAfterAccess) OnAccess(ent *types.CacheEntry, now time.Time) {
	ent.LastAccessedAt = now
	ent.ExpiresAt = now.Add(ent.TTL)
}

func (e *ExpireAfterAccess) OnWrite(ent *types.CacheEntry, now time.Time) {
	ent.CreatedAt = now
	ent.LastAccessedAt = now
	ent.ExpiresAt = now.Add(ent.TTL)
}
