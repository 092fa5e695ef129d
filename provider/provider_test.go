package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/cacheprovider/config"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/local"
	"github.com/krisalay/cacheprovider/remote"
	"github.com/krisalay/cacheprovider/tiered"
	"github.com/krisalay/cacheprovider/types"
	"github.com/krisalay/cacheprovider/writepolicy"
)

// withConfig makes Active see cfg and restores the global state afterwards.
func withConfig(t *testing.T, cfg config.Config, err error) {
	t.Helper()

	require.NoError(t, Reset())
	prev := loadConfig
	loadConfig = func() (config.Config, error) { return cfg, err }

	t.Cleanup(func() {
		loadConfig = prev
		_ = Reset()
	})
}

func TestNewSelectsLocalByDefault(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSize = 5
	cfg.Eviction = eviction.LRU

	p, err := New(cfg)
	require.NoError(t, err)

	store, ok := p.(*local.Store)
	require.True(t, ok, "got %T", p)
	assert.Equal(t, 5, store.MaxSize())
}

func TestNewSelectsRemote(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.UseNetworked = true
	cfg.NetworkedURL = "redis://" + mr.Addr()

	p, err := New(cfg)
	require.NoError(t, err)

	store, ok := p.(*remote.Store)
	require.True(t, ok, "got %T", p)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", 1, time.Minute))
	assert.True(t, mr.Exists("k"))
}

func TestNewSelectsTieredWithLocalFront(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.UseNetworked = true
	cfg.NetworkedURL = "redis://" + mr.Addr()
	cfg.LocalFront = true

	p, err := New(cfg)
	require.NoError(t, err)

	tp, ok := p.(*tiered.Provider)
	require.True(t, ok, "got %T", p)
	require.NoError(t, tp.Close())
}

func TestNewFailsLoudlyWithoutURL(t *testing.T) {
	cfg := config.Default()
	cfg.UseNetworked = true

	p, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	assert.Contains(t, err.Error(), config.EnvNetworkedURL)
}

func TestNewPassesMetricsPerBackend(t *testing.T) {
	var (
		mu       sync.Mutex
		backends []string
	)
	_, err := New(config.Default(), WithMetrics(func(backend string) types.Metrics {
		mu.Lock()
		defer mu.Unlock()
		backends = append(backends, backend)
		return types.NoopMetrics{}
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{BackendLocal}, backends)
}

func TestActiveConstructsOnce(t *testing.T) {
	withConfig(t, config.Default(), nil)

	first, err := Active()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, _ := Active()
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		assert.Same(t, first, p)
	}
}

func TestActiveKeepsSelectionError(t *testing.T) {
	cfg := config.Default()
	cfg.UseNetworked = true
	withConfig(t, cfg, nil)

	_, err := Active()
	require.Error(t, err)
	_, err2 := Active()
	assert.Equal(t, err, err2)

	assert.Panics(t, func() { MustActive() })
}

func TestActiveSurfacesConfigError(t *testing.T) {
	cfgErr := errors.New(errors.CodeInvalidConfig, "bad env")
	withConfig(t, config.Config{}, cfgErr)

	_, err := Active()
	assert.Equal(t, cfgErr, err)
}

func TestSetProviderReplacesActive(t *testing.T) {
	withConfig(t, config.Default(), nil)
	ctx := context.Background()

	original, err := Active()
	require.NoError(t, err)
	require.NoError(t, original.Set(ctx, "k", "old", time.Minute))

	replacement := local.New()
	SetProvider(replacement)

	p, err := Active()
	require.NoError(t, err)
	assert.Same(t, replacement, p)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "the replacement must not see the old backend's state")
}

func TestSetProviderClearsSelectionError(t *testing.T) {
	cfg := config.Default()
	cfg.UseNetworked = true
	withConfig(t, cfg, nil)

	_, err := Active()
	require.Error(t, err)

	SetProvider(local.New())
	p, err := Active()
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewAppliesSlidingExpiration(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Expiration = expiration.Sliding

	p, err := New(cfg)
	require.NoError(t, err)
	store := p.(*local.Store)

	require.NoError(t, store.Set(ctx, "k", 1, 400*time.Millisecond))
	time.Sleep(250 * time.Millisecond)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Greater(t, store.TTL("k"), 300*time.Millisecond, "a read pushes a sliding expiry forward")
}

func TestNewTieredWriteBack(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.UseNetworked = true
	cfg.NetworkedURL = "redis://" + mr.Addr()
	cfg.LocalFront = true
	cfg.WritePolicy = writepolicy.Back

	p, err := New(cfg)
	require.NoError(t, err)
	tp := p.(*tiered.Provider)
	assert.IsType(t, &writepolicy.WriteBackPolicy{}, tp.Policy())

	require.NoError(t, tp.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, tp.Close())
	assert.True(t, mr.Exists("k"), "closing flushes queued writes")
}

func TestNewTieredRefreshesFrontFromBack(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.UseNetworked = true
	cfg.NetworkedURL = "redis://" + mr.Addr()
	cfg.LocalFront = true
	cfg.DefaultTTL = time.Minute
	cfg.RefreshWindow = time.Hour

	p, err := New(cfg)
	require.NoError(t, err)
	tp := p.(*tiered.Provider)
	t.Cleanup(func() { _ = tp.Close() })

	require.NoError(t, tp.Set(ctx, "k", "a", 0))
	require.NoError(t, mr.Set("k", `"b"`))

	v, ok, err := tp.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	assert.Eventually(t, func() bool {
		v, _, _ := tp.Get(ctx, "k")
		return assert.ObjectsAreEqual(types.Raw(`"b"`), v)
	}, time.Second, 10*time.Millisecond)
}
