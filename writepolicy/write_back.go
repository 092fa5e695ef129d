package writepolicy

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// writeReq is one pending write.
type writeReq struct {
	key   string
	value any
	ttl   time.Duration
}

/*
WriteBackPolicy forwards writes asynchronously from a single worker.

Queued writes are detached from the caller's context: the caller has usually
returned by the time the worker runs. Each forwarded write gets its own
Timeout instead.
*/
type WriteBackPolicy struct {
	target  Target
	timeout time.Duration

	ch chan writeReq
	wg sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewWriteBackPolicy starts the worker. buffer bounds the queue; timeout
// bounds each forwarded write (<= 0 means no bound).
func NewWriteBackPolicy(target Target, buffer int, timeout time.Duration) *WriteBackPolicy {
	if buffer <= 0 {
		buffer = 1
	}
	w := &WriteBackPolicy{
		target:  target,
		timeout: timeout,
		ch:      make(chan writeReq, buffer),
	}

	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite queues the write and returns at once. When the queue is full, or
// the policy is closed, the write is dropped rather than blocking the cache.
func (w *WriteBackPolicy) OnWrite(_ context.Context, key string, value any, ttl time.Duration) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.drop(key, "write-back policy closed, dropping write")
		return nil
	}

	select {
	case w.ch <- writeReq{key: key, value: value, ttl: ttl}:
	default:
		w.drop(key, "write-back queue full, dropping write")
	}
	return nil
}

// Dropped returns how many writes were discarded.
func (w *WriteBackPolicy) Dropped() int64 { return w.dropped.Load() }

// Failed returns how many forwarded writes returned an error.
func (w *WriteBackPolicy) Failed() int64 { return w.failed.Load() }

// Close stops accepting writes and waits for the queue to drain.
// Close is safe to call multiple times.
func (w *WriteBackPolicy) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *WriteBackPolicy) drop(key, msg string) {
	w.dropped.Add(1)
	log.WithField("key", key).Warn(msg)
}

func (w *WriteBackPolicy) worker() {
	defer w.wg.Done()

	for req := range w.ch {
		ctx, cancel := context.Background(), context.CancelFunc(func() {})
		if w.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
		}
		if err := w.target.Set(ctx, req.key, req.value, req.ttl); err != nil {
			w.failed.Add(1)
			log.WithError(err).WithField("key", req.key).Warn("write-back to back store failed")
		}
		cancel()
	}
}
