package types

import "context"

/*
Loader fetches a fresh value when the cache does not have one.

This is the contract between the memoizing wrapper and the outside world:
 1. Wrapper checks the active provider → key not found
 2. Wrapper calls the Loader
 3. Loader fetches from DB/API/file
 4. Wrapper stores the result in the provider
 5. Wrapper returns the value

A Loader that returns an error causes nothing to be cached.
*/
type Loader[V any] func(ctx context.Context) (V, error)
