package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	cache "github.com/krisalay/cacheprovider"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/local"
)

func newBenchmarkStore() *local.Store {
	return local.New(
		local.WithMaxSize(100000),
		local.WithEviction(eviction.LRU),
		local.WithDefaultTTL(10*time.Second),
	)
}

func fetchInt(n int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, nil }
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkStoreGetHit(b *testing.B) {
	ctx := context.Background()
	s := newBenchmarkStore()

	_ = s.Set(ctx, "key", "value", 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = s.Get(ctx, "key")
	}
}

func BenchmarkStoreGetMiss(b *testing.B) {
	ctx := context.Background()
	s := newBenchmarkStore()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = s.Get(ctx, fmt.Sprintf("miss-%d", i))
	}
}

//
// ================= WRITE BENCH =================
//

func BenchmarkStoreSet(b *testing.B) {
	ctx := context.Background()
	s := newBenchmarkStore()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Set(ctx, fmt.Sprintf("key-%d", i), i, 0)
	}
}

//
// ================= MEMOIZER BENCH =================
//

func BenchmarkRememberHit(b *testing.B) {
	ctx := context.Background()
	m := cache.New(newBenchmarkStore())

	_, _ = cache.Remember(ctx, m, "key", time.Minute, fetchInt(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Remember(ctx, m, "key", time.Minute, fetchInt(1))
	}
}

func BenchmarkRememberParallel(b *testing.B) {
	ctx := context.Background()
	m := cache.New(newBenchmarkStore())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = cache.Remember(ctx, m, fmt.Sprintf("key-%d", i%1000), time.Minute, fetchInt(i))
			i++
		}
	})
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkStoreHighConcurrency(b *testing.B) {
	ctx := context.Background()
	s := newBenchmarkStore()

	keys := make([]string, 10000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		_ = s.Set(ctx, keys[i], i, 0)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				_, _, _ = s.Get(ctx, keys[j%len(keys)])
			}
		}()
	}
	wg.Wait()
}
