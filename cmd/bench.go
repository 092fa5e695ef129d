package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	cache "github.com/krisalay/cacheprovider"
	"github.com/krisalay/cacheprovider/provider"
)

// BenchCommandBuilder runs a concurrent read load through the memoizer.
func BenchCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:   "bench",
		Usage:  "run a concurrent load test against the configured provider",
		Action: benchAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "preload",
				Usage: "keys written before the run",
				Value: 100000,
			},
			&cli.IntFlag{
				Name:  "goroutines",
				Usage: "concurrent readers",
				Value: 200,
			},
			&cli.IntFlag{
				Name:  "ops",
				Usage: "reads per goroutine",
				Value: 5000,
			},
		},
	}
}

func benchAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	preloadKeys := cmd.Int("preload")
	goroutines := cmd.Int("goroutines")
	opsPerG := cmd.Int("ops")
	if preloadKeys <= 0 || goroutines <= 0 || opsPerG <= 0 {
		return fmt.Errorf("--preload, --goroutines and --ops must be positive")
	}

	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}
	// Room for every preloaded key unless the capacity was chosen explicitly.
	if !cmd.IsSet("max-size") && cfg.MaxSize < 2*preloadKeys {
		cfg.MaxSize = 2 * preloadKeys
	}

	reg := prometheus.NewRegistry()
	p, err := openProvider(cfg, reg)
	if err != nil {
		return err
	}
	provider.SetProvider(p)
	defer func() { _ = provider.Reset() }()

	m := cache.Default()

	fmt.Fprintln(w, "\n================ CACHE LOAD BENCHMARK =================")
	fmt.Fprintln(w, "CONFIG")
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintf(w, "Provider     : %T\n", p)
	fmt.Fprintln(w, "Capacity     :", cfg.MaxSize)
	fmt.Fprintln(w, "Preload Keys :", preloadKeys)
	fmt.Fprintln(w, "Goroutines   :", goroutines)
	fmt.Fprintln(w, "Ops/Goroutine:", opsPerG)
	fmt.Fprintln(w, "---------------------------------")

	fmt.Fprintln(w, "Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		if err := p.Set(ctx, fmt.Sprintf("key-%d", i), i, 0); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "Preload complete.")

	fmt.Fprintln(w, "Running concurrency benchmark...")
	start := time.Now()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				n := j % preloadKeys
				_, err := cache.Remember(ctx, m, fmt.Sprintf("key-%d", n), 0, func(context.Context) (int, error) {
					return n, nil
				})
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	duration := time.Since(start)
	totalOps := goroutines * opsPerG

	fmt.Fprintln(w, "\n================ RESULTS =================")
	fmt.Fprintf(w, "Total Operations : %d\n", totalOps)
	fmt.Fprintf(w, "Total Time       : %v\n", duration)
	fmt.Fprintf(w, "Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Fprintln(w, "=========================================")

	return writeMetrics(w, reg)
}
