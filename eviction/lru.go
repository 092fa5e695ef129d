// This file implements LRU eviction.

package eviction

// lru keeps keys ordered by last read. The front of the queue is the least
// recently used key and is the next victim.
type lru struct {
	q queue
}

func newLRU() *lru {
	return &lru{q: newQueue()}
}

// OnGet marks k as most recently used.
func (l *lru) OnGet(k string) { l.q.moveToBack(k) }

// OnPut tracks a new key as most recently used. A tracked key is left alone;
// reads, not writes, drive recency.
func (l *lru) OnPut(k string) {
	if l.q.has(k) {
		return
	}
	l.q.pushBack(k)
}

func (l *lru) Remove(k string) { l.q.remove(k) }

func (l *lru) Evict() string { return l.q.popFront() }

func (l *lru) Reset() { l.q = newQueue() }

func (l *lru) Keys() []string { return l.q.keys() }

func (l *lru) Len() int { return l.q.len() }
