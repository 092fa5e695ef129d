package local

import (
	"time"

	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/refresh"
	"github.com/krisalay/cacheprovider/types"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	maxSize    int
	defaultTTL time.Duration
	policy     eviction.PolicyType
	expiration expiration.Strategy
	refresh    refresh.Hook
	metrics    types.Metrics
	clock      func() time.Time
}

// WithMaxSize bounds the number of entries. Values <= 0 keep DefaultMaxSize.
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithDefaultTTL sets the TTL used when Set is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.defaultTTL = d
		}
	}
}

// WithEviction selects the eviction policy. The default is FIFO.
func WithEviction(t eviction.PolicyType) Option {
	return func(o *options) { o.policy = t }
}

// WithExpiration replaces the fixed-TTL expiration strategy.
func WithExpiration(s expiration.Strategy) Option {
	return func(o *options) { o.expiration = s }
}

// WithRefresh installs a hook that runs after successful reads.
func WithRefresh(h refresh.Hook) Option {
	return func(o *options) { o.refresh = h }
}

// WithMetrics records store events.
func WithMetrics(m types.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}
