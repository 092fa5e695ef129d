package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/krisalay/cacheprovider/config"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/writepolicy"
)

// run executes the app with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(context.Background(), append([]string{"cacheprovider"}, args...))
	return out.String(), err
}

func TestConfigCommandLayersFlagsOverEnv(t *testing.T) {
	t.Setenv(config.EnvMaxSize, "50")
	t.Setenv(config.EnvEviction, "LFU")

	out, err := run(t, "--max-size", "7", "--ttl", "30s", "config")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 7, cfg.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.DefaultTTL)
	assert.Equal(t, eviction.LFU, cfg.Eviction)
	assert.False(t, cfg.UseNetworked)
}

func TestConfigCommandSelectsPolicies(t *testing.T) {
	out, err := run(t,
		"--expiration", "sliding", "--max-age", "1h",
		"--write-policy", "back", "--refresh-window", "5s", "config")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, expiration.Sliding, cfg.Expiration)
	assert.Equal(t, time.Hour, cfg.MaxAge)
	assert.Equal(t, writepolicy.Back, cfg.WritePolicy)
	assert.Equal(t, 5*time.Second, cfg.RefreshWindow)
}

func TestBenchOnTieredWriteBack(t *testing.T) {
	mr := miniredis.RunT(t)

	_, err := run(t,
		"--redis", "--redis-url", "redis://"+mr.Addr(), "--local-front",
		"--write-policy", "back",
		"bench", "--preload", "10", "--goroutines", "2", "--ops", "20")
	require.NoError(t, err)
	assert.Equal(t, 10, len(mr.Keys()), "write-back queue is flushed on shutdown")
}

func TestConfigCommandRejectsUnknownEviction(t *testing.T) {
	_, err := run(t, "--eviction", "RANDOM", "config")
	require.Error(t, err)
}

func TestDemoRedisWithoutURLFails(t *testing.T) {
	t.Setenv(config.EnvNetworkedURL, "")

	_, err := run(t, "--redis", "demo")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestDemoOnLocalStore(t *testing.T) {
	out, err := run(t, "--max-size", "10", "demo", "--expiry-ttl", "10ms")
	require.NoError(t, err)

	assert.Contains(t, out, "CACHE  → GET a = alpha")
	assert.Contains(t, out, "CACHE  → HAS x after TTL = false")
	assert.Contains(t, out, "ORIGIN → fetches for b: 1")
	assert.Contains(t, out, "CACHE  → HAS a after filling capacity = false")
	assert.Contains(t, out, "CACHE  → HAS user:1 = false")
	assert.Contains(t, out, "CACHE  → HAS session:1 = true")
	assert.Contains(t, out, "cacheprovider_cache_hits_total")
}

func TestBenchOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	out, err := run(t,
		"--redis", "--redis-url", "redis://"+mr.Addr(),
		"bench", "--preload", "20", "--goroutines", "4", "--ops", "50")
	require.NoError(t, err)

	assert.Contains(t, out, "Total Operations : 200")
	assert.Contains(t, out, `backend=redis`)
	assert.Equal(t, 20, len(mr.Keys()))
}
