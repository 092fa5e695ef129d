package types

import "time"

/*
CacheEntry is the value-plus-metadata record a store keeps for one key.

An entry is created by a write, fully replaced by a later write of the same
key, and destroyed by delete, clear, pattern invalidation, eviction, or lazy
expiry on read. Entries are never partially updated by callers; only the
access timestamps (and ExpiresAt for sliding expiration) move while the entry
is alive, always under the owning store's lock.
*/
type CacheEntry struct {
	Key   string
	Value any

	// CreatedAt and LastAccessedAt are diagnostics only.
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// TTL is the freshness window the entry was written with.
	TTL time.Duration

	// ExpiresAt is CreatedAt + TTL. Sliding expiration pushes it forward.
	ExpiresAt time.Time
}

// NewEntry builds an entry that expires ttl after now.
func NewEntry(key string, value any, ttl time.Duration, now time.Time) *CacheEntry {
	return &CacheEntry{
		Key:            key,
		Value:          value,
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            ttl,
		ExpiresAt:      now.Add(ttl),
	}
}

// Expired reports whether now is strictly past ExpiresAt.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Remaining returns the time left before expiry, or zero once expired.
func (e *CacheEntry) Remaining(now time.Time) time.Duration {
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Raw is an encoded payload handed back by stores that cannot keep Go values,
// such as the networked store. Decode it with the Codec that wrote it.
type Raw []byte

// CloneValue copies byte slices so an entry never aliases caller memory.
// Other values are returned unchanged.
func CloneValue(v any) any {
	switch b := v.(type) {
	case []byte:
		if b == nil {
			return b
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case Raw:
		if b == nil {
			return b
		}
		out := make(Raw, len(b))
		copy(out, b)
		return out
	default:
		return v
	}
}
