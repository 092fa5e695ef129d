// Package cache memoizes expensive lookups against a pluggable cache provider.
//
// The provider contract lives in package api and has two implementations:
// an in-process store (package local) and a Redis store (package remote).
// Package provider picks one of them for the process; this package wraps any
// "fetch a fresh value" function with read-through, write-through caching
// against whichever provider is in use:
//
//	bundle, err := cache.WithCache(ctx, "i18n:"+locale, func(ctx context.Context) (Bundle, error) {
//	    return loadBundle(ctx, locale)
//	}, time.Hour)
//
// Concurrent misses for the same key share one fetch.
package cache
