package api

import (
	"context"
	"time"
)

// DefaultTTL is the freshness window used when a caller passes ttl <= 0.
const DefaultTTL = 5 * time.Minute

/*
Provider is the contract every cache backend implements.
The local in-memory store and the networked store satisfy it identically,
so callers never need to know which one is active.

ERRORS:
-------
- A missing or expired key is NOT an error; it is reported as found=false.
- The local store never returns errors.
- The networked store returns transport failures (connection refused,
  timeout, malformed reply) to the caller of the failing operation.
  Nothing is retried inside the cache layer.
*/
type Provider interface {

	/*
		Get returns the current value for key.

		BEHAVIOR:
		---------
		- Live entry:            (value, true, nil)
		- Missing/expired entry: (nil, false, nil)

		Stores that cannot keep Go values return a types.Raw that must be
		decoded with the codec that wrote it.
	*/
	Get(ctx context.Context, key string) (any, bool, error)

	/*
		Set inserts or fully replaces the entry for key.
		The entry is fresh for ttl from the call instant; ttl <= 0 selects the
		store's default TTL.
	*/
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Del removes key. Removing a key that does not exist is not an error.
	Del(ctx context.Context, key string) error

	// Has reports whether key holds a live entry. Expired entries report false.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	/*
		InvalidatePattern removes every key matching pattern.

		PATTERN SYNTAX:
		---------------
		- '*' matches zero or more characters
		- every other character matches itself
		- the match is anchored at both ends

		"user:*" matches "user:123" but not "xuser:123".
	*/
	InvalidatePattern(ctx context.Context, pattern string) error
}

// EffectiveTTL resolves ttl against a store default.
func EffectiveTTL(ttl, def time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if def > 0 {
		return def
	}
	return DefaultTTL
}
