// This file implements LFU eviction.

package eviction

import "sort"

// lfu groups keys into one queue per access frequency. Within a frequency the
// oldest key goes first, which makes eviction deterministic.
type lfu struct {
	// freq is the current access count of every tracked key.
	freq map[string]int

	// buckets holds keys by frequency.
	buckets map[int]*queue

	// minFreq is the smallest frequency currently present, so Evict never
	// scans the buckets. It may be stale after Remove; Evict repairs it.
	minFreq int
}

func newLFU() *lfu {
	return &lfu{
		freq:    make(map[string]int),
		buckets: make(map[int]*queue),
	}
}

func (l *lfu) bucket(f int) *queue {
	b, ok := l.buckets[f]
	if !ok {
		q := newQueue()
		b = &q
		l.buckets[f] = b
	}
	return b
}

func (l *lfu) drop(f int, k string) {
	b, ok := l.buckets[f]
	if !ok {
		return
	}
	b.remove(k)
	if b.len() == 0 {
		delete(l.buckets, f)
	}
}

func (l *lfu) OnGet(k string) {
	f, ok := l.freq[k]
	if !ok {
		return
	}
	l.drop(f, k)
	if f == l.minFreq && l.buckets[f] == nil {
		l.minFreq++
	}
	l.freq[k] = f + 1
	l.bucket(f + 1).pushBack(k)
}

func (l *lfu) OnPut(k string) {
	if _, ok := l.freq[k]; ok {
		return
	}
	l.freq[k] = 1
	l.bucket(1).pushBack(k)
	l.minFreq = 1
}

func (l *lfu) Remove(k string) {
	f, ok := l.freq[k]
	if !ok {
		return
	}
	l.drop(f, k)
	delete(l.freq, k)
}

func (l *lfu) Evict() string {
	if len(l.freq) == 0 {
		return ""
	}
	if l.buckets[l.minFreq] == nil {
		l.minFreq = l.lowest()
	}
	b := l.buckets[l.minFreq]
	k := b.popFront()
	if b.len() == 0 {
		delete(l.buckets, l.minFreq)
	}
	delete(l.freq, k)
	return k
}

func (l *lfu) Reset() {
	l.freq = make(map[string]int)
	l.buckets = make(map[int]*queue)
	l.minFreq = 0
}

func (l *lfu) Keys() []string {
	out := make([]string, 0, len(l.freq))
	for _, f := range l.frequencies() {
		out = append(out, l.buckets[f].keys()...)
	}
	return out
}

func (l *lfu) Len() int { return len(l.freq) }

func (l *lfu) lowest() int {
	fs := l.frequencies()
	if len(fs) == 0 {
		return 0
	}
	return fs[0]
}

func (l *lfu) frequencies() []int {
	fs := make([]int, 0, len(l.buckets))
	for f := range l.buckets {
		fs = append(fs, f)
	}
	sort.Ints(fs)
	return fs
}
