package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/jmgilman/go/errors"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/provider"
	"github.com/krisalay/cacheprovider/types"
)

/*
Memoizer turns fetch functions into cache-aware lookups.

A Memoizer is bound either to one provider (New) or to the process-wide
provider (Default), in which case the provider is resolved on every call so
provider.SetProvider takes effect immediately. Providers are compared with
==, so they must be comparable (pointer implementations are).
*/
type Memoizer struct {
	resolve      func() (api.Provider, error)
	codec        types.Codec
	fetchTimeout time.Duration

	// flights collapses concurrent misses into one fetch. It is replaced
	// whenever the resolved provider changes so a caller never joins a
	// fetch that writes to a provider it did not resolve.
	mu      sync.Mutex
	flights *flightGroup
}

// flightGroup is the singleflight group of one provider.
type flightGroup struct {
	provider api.Provider
	group    singleflight.Group
}

// Option configures a Memoizer.
type Option func(*Memoizer)

// WithCodec sets the codec used to decode values from remote providers. It
// must match the codec the provider encodes with.
func WithCodec(c types.Codec) Option {
	return func(m *Memoizer) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithFetchTimeout bounds a shared fetch. Shared fetches ignore the
// cancellation of the caller that started them, so without a timeout a
// fetch only ends when the fetch function returns.
func WithFetchTimeout(d time.Duration) Option {
	return func(m *Memoizer) {
		if d > 0 {
			m.fetchTimeout = d
		}
	}
}

// New binds a Memoizer to p.
func New(p api.Provider, opts ...Option) *Memoizer {
	return newMemoizer(func() (api.Provider, error) { return p, nil }, opts...)
}

var defaultMemoizer = newMemoizer(provider.Active)

// Default returns the Memoizer bound to the process-wide provider.
func Default() *Memoizer {
	return defaultMemoizer
}

func newMemoizer(resolve func() (api.Provider, error), opts ...Option) *Memoizer {
	m := &Memoizer{resolve: resolve, codec: types.JSONCodec{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Provider returns the provider the next call would use.
func (m *Memoizer) Provider() (api.Provider, error) {
	return m.resolve()
}

// groupFor returns the flight group of p, starting a new one if p is not
// the provider the current group belongs to.
func (m *Memoizer) groupFor(p api.Provider) *singleflight.Group {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flights == nil || m.flights.provider != p {
		m.flights = &flightGroup{provider: p}
	}
	return &m.flights.group
}

// flightKey separates callers that expect different value types.
func flightKey[V any](key string) string {
	var zero V
	return fmt.Sprintf("%T\x00%s", &zero, key)
}

// result is what a shared fetch hands to every waiter.
type result struct {
	value  any
	setErr error
}

/*
Remember returns the cached value for key, or calls fetch and caches its
result for ttl.

BEHAVIOR:
---------
1. Hit: the cached value is returned and fetch is NOT called.
2. Miss: fetch runs once for all concurrent callers of the same key and
   value type on the same provider; its result is written with
   Set(key, value, ttl) and returned to all of them.
3. fetch fails: the error is returned and nothing is cached.

CANCELLATION:
-------------
Each caller waits on its own ctx. The shared fetch runs on a context that
keeps the values of the ctx that started it but not its cancellation, so one
caller giving up does not fail the others.

ERRORS:
-------
- A provider error on the read is returned as is.
- A provider error on the write is returned together with the fetched value.
- A cached value that cannot be converted to V is logged and treated as a
  miss; the fetch result overwrites it.
*/
func Remember[V any](ctx context.Context, m *Memoizer, key string, ttl time.Duration, fetch types.Loader[V]) (V, error) {
	var zero V

	p, err := m.resolve()
	if err != nil {
		return zero, err
	}

	if v, ok, err := lookup[V](ctx, p, m.codec, key); err != nil || ok {
		return v, err
	}

	ch := m.groupFor(p).DoChan(flightKey[V](key), func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if m.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, m.fetchTimeout)
			defer cancel()
		}

		// A flight for key may have finished between our miss and now.
		if v, ok, err := lookup[V](fctx, p, m.codec, key); err != nil || ok {
			return result{value: v}, err
		}

		log.WithField("key", key).Debug("cache miss, fetching")

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		return result{value: v, setErr: p.Set(fctx, key, v, ttl)}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	if res.Shared {
		log.WithField("key", key).Debug("joined in-flight fetch")
	}

	r := res.Val.(result)
	v, ok := r.value.(V)
	if !ok && r.value != nil {
		return zero, errors.Newf(errors.CodeInvalidInput,
			"shared fetch produced %T, want %T", r.value, zero)
	}
	if r.setErr != nil {
		return v, r.setErr
	}
	return v, nil
}

// WithCache is Remember on the process-wide provider.
func WithCache[V any](ctx context.Context, key string, fetch types.Loader[V], ttl time.Duration) (V, error) {
	return Remember(ctx, Default(), key, ttl, fetch)
}

// Get reads key from the Memoizer's provider and converts it to V. Encoded
// values are decoded with the Memoizer's codec.
func Get[V any](ctx context.Context, m *Memoizer, key string) (V, bool, error) {
	var zero V

	p, err := m.resolve()
	if err != nil {
		return zero, false, err
	}

	v, ok, err := p.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := decode[V](m.codec, v)
	if err != nil {
		return zero, false, errors.WithContext(err, "key", key)
	}
	return out, true, nil
}

// lookup is Get for Remember: undecodable values become misses.
func lookup[V any](ctx context.Context, p api.Provider, codec types.Codec, key string) (V, bool, error) {
	var zero V

	raw, ok, err := p.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	v, err := decode[V](codec, raw)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("discarding cached value of unexpected type")
		return zero, false, nil
	}
	return v, true, nil
}

// decode converts a stored value to V. Values kept as Go values are type
// asserted; encoded values are unmarshalled.
func decode[V any](codec types.Codec, stored any) (V, error) {
	var out V

	switch v := stored.(type) {
	case V:
		return v, nil
	case types.Raw:
		if err := codec.Unmarshal(v, &out); err != nil {
			return out, errors.Wrap(err, errors.CodeInvalidInput, "failed to decode cached value")
		}
		return out, nil
	default:
		return out, errors.Newf(errors.CodeInvalidInput, "cached value has type %T, want %T", stored, out)
	}
}

// Set writes value under key on the Memoizer's provider. A ttl <= 0 uses
// the provider's default.
func Set(ctx context.Context, m *Memoizer, key string, value any, ttl time.Duration) error {
	p, err := m.resolve()
	if err != nil {
		return err
	}
	return p.Set(ctx, key, value, ttl)
}
