package tiered

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/cacheprovider/local"
	"github.com/krisalay/cacheprovider/remote"
	"github.com/krisalay/cacheprovider/types"
	"github.com/krisalay/cacheprovider/writepolicy"
)

func newTiered(t *testing.T, policy func(back *remote.Store) writepolicy.WritePolicy) (*Provider, *local.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	back := remote.NewWithClient(client)
	front := local.New(local.WithMaxSize(10))

	var wp writepolicy.WritePolicy
	if policy != nil {
		wp = policy(back)
	}
	p := New(front, back, wp, 10*time.Second)
	t.Cleanup(func() { _ = p.Close() })
	return p, front, mr
}

func TestSetWritesBothTiers(t *testing.T) {
	ctx := context.Background()
	p, front, mr := newTiered(t, nil)

	require.NoError(t, p.Set(ctx, "k", "v", time.Minute))

	assert.Equal(t, 1, front.Len())
	assert.True(t, mr.Exists("k"))
	assert.Equal(t, time.Minute, mr.TTL("k"))
	assert.InDelta(t, float64(10*time.Second), float64(front.TTL("k")), float64(time.Second),
		"front copy is capped at the front TTL")

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v, "front hit returns the Go value")
}

func TestBackHitPopulatesFront(t *testing.T) {
	ctx := context.Background()
	p, front, mr := newTiered(t, nil)

	require.NoError(t, mr.Set("k", `"from-redis"`))

	v, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Raw(`"from-redis"`), v)
	assert.Equal(t, 1, front.Len())

	ok, err = p.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelClearAndInvalidateReachBothTiers(t *testing.T) {
	ctx := context.Background()
	p, front, mr := newTiered(t, nil)

	for _, k := range []string{"profile:1", "profile:2", "user:1", "user:2"} {
		require.NoError(t, p.Set(ctx, k, k, time.Minute))
	}

	require.NoError(t, p.InvalidatePattern(ctx, "profile:*"))
	assert.False(t, mr.Exists("profile:1"))
	assert.Equal(t, []string{"user:1", "user:2"}, front.Keys())

	require.NoError(t, p.Del(ctx, "user:1"))
	assert.False(t, mr.Exists("user:1"))
	assert.Equal(t, []string{"user:2"}, front.Keys())

	require.NoError(t, p.Clear(ctx))
	assert.Empty(t, mr.Keys())
	assert.Equal(t, 0, front.Len())
}

func TestWriteBackReachesBackOnClose(t *testing.T) {
	ctx := context.Background()
	p, _, mr := newTiered(t, func(back *remote.Store) writepolicy.WritePolicy {
		return writepolicy.NewWriteBackPolicy(back, 8, time.Second)
	})

	require.NoError(t, p.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, p.Close())

	assert.True(t, mr.Exists("k"))
}
