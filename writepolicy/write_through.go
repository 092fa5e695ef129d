package writepolicy

import (
	"context"
	"time"
)

/*
WriteThroughPolicy forwards every write synchronously.

The cache write is not complete until the target write finishes, so a slow
or failing target makes cache writes slow or failing too.
*/
type WriteThroughPolicy struct {
	target Target
}

// NewWriteThroughPolicy creates a write-through policy for target.
func NewWriteThroughPolicy(target Target) *WriteThroughPolicy {
	return &WriteThroughPolicy{target: target}
}

// OnWrite writes to the target and returns its error.
func (w *WriteThroughPolicy) OnWrite(ctx context.Context, key string, value any, ttl time.Duration) error {
	return w.target.Set(ctx, key, value, ttl)
}

// Close has nothing to release.
func (w *WriteThroughPolicy) Close() {}
