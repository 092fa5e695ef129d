// This file defines the "refresh hook".
// The hook lets a store do something extra when data is read, with the goal of
// keeping hot data fresh without slowing down reads.

package refresh

import (
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/krisalay/cacheprovider/types"
)

/*
Hook is called after every successful read, outside the store's lock,
with a copy of the entry that was returned.

OnRead MUST be fast and non-blocking because it runs on the read path.
It reports whether it triggered a refresh.
*/
type Hook interface {
	OnRead(key string, ent types.CacheEntry) bool
}

/*
NearExpiry triggers Refresh in the background when a read sees an entry
with less than Window left to live. At most one refresh per key is in
flight at a time.
*/
type NearExpiry struct {
	Window  time.Duration
	Refresh func(key string)

	// Now defaults to time.Now.
	Now func() time.Time

	inflight sync.Map
}

func (n *NearExpiry) OnRead(key string, ent types.CacheEntry) bool {
	if n.Refresh == nil || n.Window <= 0 {
		return false
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	if ent.Remaining(now()) >= n.Window {
		return false
	}
	if _, busy := n.inflight.LoadOrStore(key, struct{}{}); busy {
		return false
	}

	go func() {
		defer n.inflight.Delete(key)
		log.WithField("key", key).Debug("refreshing entry ahead of expiry")
		n.Refresh(key)
	}()
	return true
}
