package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/cacheprovider/local"
)

func TestPrometheusCountsLocalStoreEvents(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewPrometheus("test", "local", reg)

	s := local.New(local.WithMaxSize(1), local.WithMetrics(m))

	require.NoError(t, s.Set(ctx, "a", 1, time.Minute))
	_, _, _ = s.Get(ctx, "a")
	_, _, _ = s.Get(ctx, "missing")
	require.NoError(t, s.Set(ctx, "b", 2, time.Minute))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evictions))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Expirations))

	n, err := testutil.GatherAndCount(reg, "test_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
