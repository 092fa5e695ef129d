package eviction

import (
	"fmt"
	"strings"
)

/*
This file defines how a store decides what to remove when it runs out of space.
*/

/*
Policy is the interface every eviction strategy implements.

The store owns the lock; policies are NOT safe for concurrent use on their own
and are only ever called while the store's mutex is held.
*/
type Policy interface {

	// OnGet is called whenever a live key is read.
	// LRU moves the key to the back of the queue, LFU counts the access,
	// FIFO ignores it.
	OnGet(string)

	// OnPut is called whenever a key is written.
	// A key that is already tracked keeps its position: re-setting a key does
	// not refresh it for eviction purposes.
	OnPut(string)

	// Remove is called when a key leaves the store for any reason other than
	// Evict (delete, expiry, invalidation).
	Remove(string)

	// Evict picks the victim, forgets it, and returns it.
	// It returns "" when nothing is tracked.
	Evict() string

	// Reset forgets every key.
	Reset()

	// Keys returns tracked keys in the order they would be evicted.
	Keys() []string

	// Len returns the number of tracked keys.
	Len() int
}

// PolicyType identifies a supported eviction strategy.
type PolicyType string

const (
	// FIFO evicts the oldest inserted key regardless of access. This is the
	// default.
	FIFO PolicyType = "FIFO"

	// LRU evicts the key that has not been read for the longest time.
	LRU PolicyType = "LRU"

	// LFU evicts the key read the fewest times; ties go to the oldest.
	LFU PolicyType = "LFU"
)

// ParsePolicyType accepts a policy name in any case. An empty name means FIFO.
func ParsePolicyType(s string) (PolicyType, error) {
	switch t := PolicyType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return FIFO, nil
	case FIFO, LRU, LFU:
		return t, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", s)
	}
}

// NewEvictionPolicy creates the policy for t.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case FIFO, "":
		return newFIFO()
	case LRU:
		return newLRU()
	case LFU:
		return newLFU()
	default:
		panic(fmt.Sprintf("unknown eviction policy %q", t))
	}
}
