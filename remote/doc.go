// Package remote implements the networked cache provider on top of Redis.
//
// The store shares entries across processes. TTLs are enforced by Redis
// itself, so an expired key is simply gone on the next read. Values are
// encoded with a types.Codec on the way in and handed back as types.Raw.
//
// One client is built per Store. go-redis pools and redials connections on
// its own, but the cache layer adds no retry: every transport failure is
// returned to the caller of the failing operation as a retryable
// CodeNetwork (or CodeTimeout) error from github.com/jmgilman/go/errors.
//
// Example:
//
//	store, err := remote.New(remote.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Set(ctx, "i18n:en", bundle, time.Hour)
package remote
