package remote

import (
	"time"

	"github.com/krisalay/cacheprovider/types"
)

// Config describes how to reach the remote store.
type Config struct {
	// URL is a redis:// or rediss:// connection target.
	URL string

	// KeyPrefix namespaces every key written by this store.
	KeyPrefix string
}

// Option configures a Store.
type Option func(*Store)

// WithCodec replaces the JSON codec.
func WithCodec(c types.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithKeyPrefix namespaces every key. It overrides Config.KeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithDefaultTTL sets the TTL used when Set is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// WithMetrics records hits and misses.
func WithMetrics(m types.Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithScanCount sets the COUNT hint used when scanning keys.
func WithScanCount(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.scanCount = n
		}
	}
}
