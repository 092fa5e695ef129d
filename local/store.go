package local

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/engine"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/pattern"
	"github.com/krisalay/cacheprovider/types"
)

// DefaultMaxSize is the capacity of a Store built without WithMaxSize.
const DefaultMaxSize = 1000

var _ api.Provider = (*Store)(nil)

// Store is a capacity-bounded, TTL-aware in-memory provider.
// None of its Provider methods ever return an error.
type Store struct {
	mu sync.Mutex

	entries map[string]*types.CacheEntry
	policy  eviction.Policy
	engine  *engine.CacheEngine

	maxSize    int
	defaultTTL time.Duration
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	o := options{
		maxSize:    DefaultMaxSize,
		defaultTTL: api.DefaultTTL,
		policy:     eviction.FIFO,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		entries:    make(map[string]*types.CacheEntry, o.maxSize),
		policy:     eviction.NewEvictionPolicy(o.policy),
		engine:     engine.NewCacheEngine(o.expiration, o.refresh, o.metrics, o.clock),
		maxSize:    o.maxSize,
		defaultTTL: o.defaultTTL,
	}
}

// MaxSize returns the configured capacity.
func (s *Store) MaxSize() int { return s.maxSize }

// DefaultTTL returns the TTL applied when Set is called with ttl <= 0.
func (s *Store) DefaultTTL() time.Duration { return s.defaultTTL }

/*
Get returns the live value for key.

An expired entry is deleted as a side effect and reported as absent.
A successful read counts as an access for the eviction policy and the
expiration strategy, and runs the refresh hook after the lock is released.
*/
func (s *Store) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	ent, ok := s.liveLocked(key)
	if !ok {
		s.mu.Unlock()
		s.engine.Metrics.Miss()
		return nil, false, nil
	}

	now := s.engine.Now()
	s.engine.OnRead(ent, now)
	s.policy.OnGet(key)
	snapshot := *ent
	s.mu.Unlock()

	s.engine.Metrics.Hit()
	s.engine.AfterRead(key, snapshot)
	return types.CloneValue(snapshot.Value), true, nil
}

/*
Set inserts or fully replaces the entry for key.

If key is new and the store is full, exactly one victim is evicted before the
insert. Replacing an existing key never evicts and keeps the key's position in
the eviction order.
*/
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	ttl = api.EffectiveTTL(ttl, s.defaultTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictLocked()
	}

	now := s.engine.Now()
	ent := types.NewEntry(key, types.CloneValue(value), ttl, now)
	s.engine.OnWrite(ent, now)

	s.entries[key] = ent
	s.policy.OnPut(key)
	return nil
}

// Del removes key if present.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(key)
	return nil
}

// Has reports whether key is live. It evicts an expired entry but does not
// count as an access.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.liveLocked(key)
	return ok, nil
}

// Clear removes all entries.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*types.CacheEntry, s.maxSize)
	s.policy.Reset()
	return nil
}

// InvalidatePattern removes every key matching p.
func (s *Store) InvalidatePattern(_ context.Context, p string) error {
	m := pattern.Compile(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if m.Match(key) {
			s.deleteLocked(key)
			removed++
		}
	}

	log.WithFields(log.Fields{"pattern": p, "removed": removed}).Debug("invalidated keys")
	return nil
}

// Len returns the number of stored entries, including expired entries that no
// read has reclaimed yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns stored keys in eviction order, next victim first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Keys()
}

/*
TTL returns the remaining time-to-live of key.

RETURN VALUES:
--------------
> 0 : time left before expiry
-2  : key does not exist or is already expired
*/
func (s *Store) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.liveLocked(key)
	if !ok {
		return -2
	}
	return ent.Remaining(s.engine.Now())
}

// liveLocked returns the entry for key unless it is missing or expired.
// Expired entries are deleted on the way out.
func (s *Store) liveLocked(key string) (*types.CacheEntry, bool) {
	ent, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.engine.IsExpired(ent, s.engine.Now()) {
		s.deleteLocked(key)
		s.engine.Metrics.Expire()
		log.WithField("key", key).Debug("expired entry removed on read")
		return nil, false
	}
	return ent, true
}

func (s *Store) evictLocked() {
	victim := s.policy.Evict()
	if victim == "" {
		return
	}
	delete(s.entries, victim)
	s.engine.Metrics.Eviction()
	log.WithField("key", victim).Debug("evicted entry at capacity")
}

func (s *Store) deleteLocked(key string) {
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	s.policy.Remove(key)
}
