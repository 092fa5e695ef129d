package remote

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/apex/log"
	"github.com/jmgilman/go/errors"
	"github.com/redis/go-redis/v9"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/pattern"
	"github.com/krisalay/cacheprovider/types"
)

const defaultScanCount = 256

var _ api.Provider = (*Store)(nil)

// Store is a Provider backed by a Redis server.
type Store struct {
	client redis.UniversalClient
	owned  bool

	codec      types.Codec
	metrics    types.Metrics
	prefix     string
	defaultTTL time.Duration
	scanCount  int64
}

/*
New parses cfg.URL and builds the client.

No connection is attempted here; the first operation (or Ping) dials.
An empty or malformed URL fails with CodeInvalidConfig.
*/
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New(errors.CodeInvalidConfig,
			"networked cache requested but no connection target is configured")
	}

	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid networked cache URL")
	}

	s := NewWithClient(redis.NewClient(redisOpts), append([]Option{WithKeyPrefix(cfg.KeyPrefix)}, opts...)...)
	s.owned = true
	return s, nil
}

// NewWithClient wraps an existing client. Close does not close it.
func NewWithClient(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:     client,
		codec:      types.JSONCodec{},
		metrics:    types.NoopMetrics{},
		defaultTTL: api.DefaultTTL,
		scanCount:  defaultScanCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the encoded value for key as types.Raw.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		s.metrics.Miss()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, transportError(err, "GET", key)
	}

	s.metrics.Hit()
	return types.Raw(b), true, nil
}

// Set encodes value and stores it with a native TTL.
// A types.Raw value is stored as is.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	var payload []byte
	if raw, ok := value.(types.Raw); ok {
		payload = raw
	} else {
		b, err := s.codec.Marshal(value)
		if err != nil {
			return errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidInput, "failed to encode cache value"),
				"key", key)
		}
		payload = b
	}

	ttl = api.EffectiveTTL(ttl, s.defaultTTL)
	if err := s.client.Set(ctx, s.prefix+key, payload, ttl).Err(); err != nil {
		return transportError(err, "SET", key)
	}
	return nil
}

// Del removes key. A missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return transportError(err, "DEL", key)
	}
	return nil
}

// Has reports whether key exists. Redis drops expired keys itself.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, transportError(err, "EXISTS", key)
	}
	return n > 0, nil
}

/*
Clear removes every entry owned by this store.

With a key prefix only the prefixed keys are removed; without one the
whole logical database is flushed.
*/
func (s *Store) Clear(ctx context.Context) error {
	if s.prefix == "" {
		if err := s.client.FlushDB(ctx).Err(); err != nil {
			return transportError(err, "FLUSHDB", "")
		}
		return nil
	}
	_, err := s.deleteMatching(ctx, pattern.QuoteGlob(s.prefix)+"*")
	return err
}

// InvalidatePattern removes every key matching p.
func (s *Store) InvalidatePattern(ctx context.Context, p string) error {
	if pattern.IsLiteral(p) {
		return s.Del(ctx, p)
	}

	n, err := s.deleteMatching(ctx, pattern.QuoteGlob(s.prefix)+pattern.ToGlob(p))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"pattern": p, "removed": n}).Debug("invalidated remote keys")
	return nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return transportError(err, "PING", "")
	}
	return nil
}

// Close releases the client if this Store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// deleteMatching scans for glob and deletes matches one page at a time.
func (s *Store) deleteMatching(ctx context.Context, glob string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, glob, s.scanCount).Result()
		if err != nil {
			return removed, transportError(err, "SCAN", "")
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, transportError(err, "DEL", "")
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
