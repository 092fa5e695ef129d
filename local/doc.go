// Package local implements the in-process cache provider.
//
// The store is a map bounded by a maximum size. When a new key arrives and
// the store is full, one victim chosen by the eviction policy is removed
// first; the default policy is FIFO, so the oldest inserted key goes. Entries
// expire lazily: a read that finds an expired entry deletes it and reports
// absence, and there is no background sweep.
//
// A single mutex guards the map and the policy. Reads mutate too (lazy
// expiry, LRU recency), so there is no read lock fast path.
package local
