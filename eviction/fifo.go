// This file implements FIFO eviction.

package eviction

// fifo evicts keys in insertion order. Reads never change the order and a
// re-put of a tracked key keeps its original position.
type fifo struct {
	q queue
}

func newFIFO() *fifo {
	return &fifo{q: newQueue()}
}

func (f *fifo) OnGet(string) {}

func (f *fifo) OnPut(k string) {
	if f.q.has(k) {
		return
	}
	f.q.pushBack(k)
}

func (f *fifo) Remove(k string) { f.q.remove(k) }

func (f *fifo) Evict() string { return f.q.popFront() }

func (f *fifo) Reset() { f.q = newQueue() }

func (f *fifo) Keys() []string { return f.q.keys() }

func (f *fifo) Len() int { return f.q.len() }
