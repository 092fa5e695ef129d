package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/cacheprovider/types"
)

func TestNearExpiryTriggersInsideWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	done := make(chan string, 1)
	release := make(chan struct{})

	h := &NearExpiry{
		Window: time.Second,
		Now:    func() time.Time { return now },
		Refresh: func(key string) {
			<-release
			done <- key
		},
	}

	fresh := *types.NewEntry("k", 1, time.Minute, now)
	assert.False(t, h.OnRead("k", fresh))

	stale := *types.NewEntry("k", 1, 500*time.Millisecond, now)
	assert.True(t, h.OnRead("k", stale))
	assert.False(t, h.OnRead("k", stale), "one refresh per key in flight")

	close(release)
	select {
	case key := <-done:
		assert.Equal(t, "k", key)
	case <-time.After(time.Second):
		require.Fail(t, "refresh did not run")
	}
}

func TestNearExpiryDisabled(t *testing.T) {
	h := &NearExpiry{Window: time.Second}
	ent := *types.NewEntry("k", 1, time.Millisecond, time.Now())
	assert.False(t, h.OnRead("k", ent))
}
