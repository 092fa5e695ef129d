package writepolicy

import (
	"context"
	"time"
)

/*
This file defines what a "write policy" is.

A tiered provider writes to its front store first and then hands the write
to a policy that decides how the back store hears about it:
- Write-through: immediately, and the caller sees the back store's error
- Write-back: later, from a background queue
*/

// Target is the store a policy forwards writes to.
type Target interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// WritePolicy is the contract every write policy follows.
type WritePolicy interface {

	// OnWrite forwards one write to the target.
	OnWrite(ctx context.Context, key string, value any, ttl time.Duration) error

	// Close flushes pending writes and stops background work.
	Close()
}
