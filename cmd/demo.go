package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	cache "github.com/krisalay/cacheprovider"
	"github.com/krisalay/cacheprovider/local"
	"github.com/krisalay/cacheprovider/provider"
)

// DemoCommandBuilder walks through the provider operations on the
// configured backend.
func DemoCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:   "demo",
		Usage:  "walk through hits, expiry, eviction, invalidation and memoization",
		Action: demoAction,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "expiry-ttl",
				Usage: "TTL of the entry used to show expiry",
				Value: time.Second,
			},
		},
	}
}

func demoAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p, err := openProvider(cfg, reg)
	if err != nil {
		return err
	}
	provider.SetProvider(p)
	defer func() {
		if err := provider.Reset(); err != nil {
			fmt.Fprintln(w, "SYSTEM → close failed:", err)
		}
	}()

	fmt.Fprintln(w, "\n==================== SYSTEM BOOT ====================")
	fmt.Fprintf(w, "PROVIDER        : %T\n", p)
	fmt.Fprintln(w, "EVICTION POLICY :", cfg.Eviction)
	fmt.Fprintln(w, "CAPACITY        :", cfg.MaxSize)
	fmt.Fprintln(w, "DEFAULT TTL     :", cfg.DefaultTTL)

	var fetches atomic.Int32
	fetch := func(v string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			fetches.Add(1)
			fmt.Fprintln(w, "ORIGIN → fetch", v)
			return v, nil
		}
	}

	// ====================================================
	fmt.Fprintln(w, "\n==================== 1) CACHE MISS ====================")
	v, err := cache.WithCache(ctx, "a", fetch("alpha"), 0)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "CACHE  → GET a =", v)

	// ====================================================
	fmt.Fprintln(w, "\n==================== 2) CACHE HIT ====================")
	v, err = cache.WithCache(ctx, "a", fetch("alpha"), 0)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "CACHE  → GET a =", v)

	// ====================================================
	fmt.Fprintln(w, "\n==================== 3) TTL EXPIRATION ====================")
	ttl := cmd.Duration("expiry-ttl")
	if err := p.Set(ctx, "x", "temp-value", ttl); err != nil {
		return err
	}
	fmt.Fprintf(w, "CACHE  → SET x (TTL = %s)\n", ttl)

	time.Sleep(ttl + 100*time.Millisecond)

	ok, err := p.Has(ctx, "x")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "CACHE  → HAS x after TTL =", ok)

	// ====================================================
	fmt.Fprintln(w, "\n==================== 4) SINGLEFLIGHT ====================")
	before := fetches.Load()
	slow := func(context.Context) (string, error) {
		fetches.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "beta", nil
	}

	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			val, err := cache.WithCache(ctx, "b", slow, 0)
			fmt.Fprintf(w, "GOROUTINE-%d → GET b = %v (err=%v)\n", id, val, err)
		}(i)
	}
	wg.Wait()
	fmt.Fprintln(w, "ORIGIN → fetches for b:", fetches.Load()-before)

	// ====================================================
	fmt.Fprintln(w, "\n==================== 5) EVICTION ====================")
	if store, ok := p.(*local.Store); ok {
		for i := 0; i <= store.MaxSize(); i++ {
			if err := p.Set(ctx, fmt.Sprintf("k%d", i), i, 0); err != nil {
				return err
			}
		}
		ok, _ := p.Has(ctx, "a")
		fmt.Fprintln(w, "CACHE  → HAS a after filling capacity =", ok)
		fmt.Fprintln(w, "CACHE  → entries =", store.Len())
	} else {
		fmt.Fprintln(w, "CACHE  → eviction is managed by the server for this backend")
	}

	// ====================================================
	fmt.Fprintln(w, "\n==================== 6) PATTERN INVALIDATION ====================")
	for _, k := range []string{"user:1", "user:2", "session:1"} {
		if err := p.Set(ctx, k, k, 0); err != nil {
			return err
		}
	}
	if err := p.InvalidatePattern(ctx, "user:*"); err != nil {
		return err
	}
	for _, k := range []string{"user:1", "user:2", "session:1"} {
		ok, err := p.Has(ctx, k)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "CACHE  → HAS %s = %v\n", k, ok)
	}

	// ====================================================
	fmt.Fprintln(w, "\n==================== 7) REMOVE ====================")
	if err := p.Del(ctx, "session:1"); err != nil {
		return err
	}
	ok, err = p.Has(ctx, "session:1")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "CACHE  → HAS session:1 after remove =", ok)

	// ====================================================
	if err := writeMetrics(w, reg); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n==================== SHUTDOWN ====================")
	return nil
}
