// Package provider selects the cache backend for the process.
//
// New is the composition-root factory: it turns a config.Config into exactly
// one api.Provider. Active wraps it in a construct-on-first-use, process-wide
// instance for callers that cannot have the provider injected, and
// SetProvider replaces that instance atomically (tests use it to inject
// fakes).
package provider

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/jmgilman/go/errors"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/config"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/local"
	"github.com/krisalay/cacheprovider/refresh"
	"github.com/krisalay/cacheprovider/remote"
	"github.com/krisalay/cacheprovider/tiered"
	"github.com/krisalay/cacheprovider/writepolicy"
)

// writeTimeout bounds background writes and refreshes against Redis.
const writeTimeout = 5 * time.Second

// Backend names used in logs and metrics labels.
const (
	BackendLocal  = "local"
	BackendRemote = "redis"
)

/*
New builds the backend described by cfg.

SELECTION:
----------
- cfg.UseNetworked and a URL: the Redis store, fronted by a local store when
  cfg.LocalFront is set
- cfg.UseNetworked without a URL: a CodeInvalidConfig error. The local store
  is never substituted silently.
- otherwise: the local store
*/
func New(cfg config.Config, opts ...Option) (api.Provider, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.UseNetworked {
		log.WithFields(log.Fields{
			"backend":    BackendLocal,
			"max_size":   cfg.MaxSize,
			"eviction":   cfg.Eviction,
			"expiration": cfg.Expiration,
		}).Info("selected cache provider")
		return newLocal(cfg, o), nil
	}

	if cfg.NetworkedURL == "" {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig,
				"%s is set but %s is empty", config.EnvUseNetworked, config.EnvNetworkedURL),
			"backend", BackendRemote)
	}

	remoteOpts := []remote.Option{remote.WithDefaultTTL(cfg.DefaultTTL)}
	if o.metrics != nil {
		remoteOpts = append(remoteOpts, remote.WithMetrics(o.metrics(BackendRemote)))
	}
	store, err := remote.New(remote.Config{URL: cfg.NetworkedURL, KeyPrefix: cfg.KeyPrefix}, remoteOpts...)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"backend":      BackendRemote,
		"local_front":  cfg.LocalFront,
		"key_prefix":   cfg.KeyPrefix,
		"write_policy": cfg.WritePolicy,
	}).Info("selected cache provider")

	if cfg.LocalFront {
		return newTiered(cfg, o, store), nil
	}
	return store, nil
}

// newTiered fronts back with a local store. Writes reach back through the
// configured write policy; with a refresh window, front entries close to
// expiry are re-read from back in the background.
func newTiered(cfg config.Config, o options, back *remote.Store) *tiered.Provider {
	var (
		tp        *tiered.Provider
		extraOpts []local.Option
	)
	if cfg.RefreshWindow > 0 {
		extraOpts = append(extraOpts, local.WithRefresh(&refresh.NearExpiry{
			Window: cfg.RefreshWindow,
			Refresh: func(key string) {
				ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
				defer cancel()
				if err := tp.RefreshFront(ctx, key); err != nil {
					log.WithError(err).WithField("key", key).Warn("failed to refresh front entry")
				}
			},
		}))
	}

	policy := writepolicy.New(cfg.WritePolicy, back, writeTimeout)
	tp = tiered.New(newLocal(cfg, o, extraOpts...), back, policy, 0)
	return tp
}

func newLocal(cfg config.Config, o options, extra ...local.Option) *local.Store {
	localOpts := []local.Option{
		local.WithMaxSize(cfg.MaxSize),
		local.WithDefaultTTL(cfg.DefaultTTL),
		local.WithEviction(cfg.Eviction),
		local.WithExpiration(expiration.New(cfg.Expiration, cfg.MaxAge)),
	}
	localOpts = append(localOpts, extra...)
	if o.metrics != nil {
		localOpts = append(localOpts, local.WithMetrics(o.metrics(BackendLocal)))
	}
	return local.New(localOpts...)
}

// selection is one immutable outcome of choosing a provider.
type selection struct {
	provider api.Provider
	err      error
}

var (
	active atomic.Pointer[selection]
	initMu sync.Mutex

	// loadConfig is swapped by tests.
	loadConfig = config.FromEnv
)

/*
Active returns the process-wide provider, selecting it from the environment
on first use.

The outcome is kept for the rest of the process, including a failure: if
selection failed, every call returns the same error so a misconfiguration
cannot hide behind a silently substituted backend.
*/
func Active() (api.Provider, error) {
	if s := active.Load(); s != nil {
		return s.provider, s.err
	}

	initMu.Lock()
	defer initMu.Unlock()

	if s := active.Load(); s != nil {
		return s.provider, s.err
	}

	s := &selection{}
	cfg, err := loadConfig()
	if err != nil {
		s.err = err
	} else {
		s.provider, s.err = New(cfg)
	}
	if s.err != nil {
		log.WithError(s.err).Error("cache provider selection failed")
	}

	active.Store(s)
	return s.provider, s.err
}

// MustActive is Active for program start-up paths. It panics on error.
func MustActive() api.Provider {
	p, err := Active()
	if err != nil {
		panic(err)
	}
	return p
}

// SetProvider makes p the process-wide provider. Every later Active call
// observes p; none observes a mix of old and new state.
func SetProvider(p api.Provider) {
	initMu.Lock()
	defer initMu.Unlock()
	active.Store(&selection{provider: p})
}

// Reset forgets the current provider so the next Active call selects again.
// The previous provider is closed if it holds resources.
func Reset() error {
	initMu.Lock()
	defer initMu.Unlock()

	prev := active.Swap(nil)
	if prev == nil || prev.provider == nil {
		return nil
	}
	if c, ok := prev.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
