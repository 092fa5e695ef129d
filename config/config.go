// Package config resolves cache backend settings from the environment and
// an optional YAML file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/writepolicy"
)

// Environment variables read by FromEnv.
const (
	EnvConfigFile   = "CACHE_CONFIG"
	EnvUseNetworked = "CACHE_USE_REDIS"
	EnvNetworkedURL = "CACHE_REDIS_URL"
	EnvKeyPrefix    = "CACHE_KEY_PREFIX"
	EnvLocalFront   = "CACHE_LOCAL_FRONT"
	EnvMaxSize      = "CACHE_MAX_SIZE"
	EnvDefaultTTL   = "CACHE_DEFAULT_TTL"
	EnvEviction     = "CACHE_EVICTION"
	EnvExpiration   = "CACHE_EXPIRATION"
	EnvMaxAge       = "CACHE_MAX_AGE"
	EnvWritePolicy  = "CACHE_WRITE_POLICY"
	EnvRefresh      = "CACHE_REFRESH_WINDOW"
)

// DefaultMaxSize mirrors the local store default.
const DefaultMaxSize = 1000

// Config selects and tunes the cache backend.
type Config struct {
	// UseNetworked selects the Redis backend.
	UseNetworked bool `yaml:"use_redis"`

	// NetworkedURL is the Redis connection target.
	NetworkedURL string `yaml:"redis_url"`

	// KeyPrefix namespaces keys in the networked backend.
	KeyPrefix string `yaml:"key_prefix"`

	// LocalFront puts a local store in front of the networked backend.
	LocalFront bool `yaml:"local_front"`

	MaxSize    int                 `yaml:"max_size"`
	DefaultTTL time.Duration       `yaml:"default_ttl"`
	Eviction   eviction.PolicyType `yaml:"eviction"`

	// Expiration selects fixed or sliding TTLs in the local store. MaxAge
	// caps the lifetime of a sliding entry (0 means no cap).
	Expiration expiration.Kind `yaml:"expiration"`
	MaxAge     time.Duration   `yaml:"max_age"`

	// WritePolicy decides how writes to the local front reach Redis.
	WritePolicy writepolicy.Mode `yaml:"write_policy"`

	// RefreshWindow, when positive, re-reads a front entry from Redis once
	// a read finds less than this much of its TTL left.
	RefreshWindow time.Duration `yaml:"refresh_window"`
}

// Default returns the local-only configuration.
func Default() Config {
	return Config{
		MaxSize:     DefaultMaxSize,
		DefaultTTL:  api.DefaultTTL,
		Eviction:    eviction.FIFO,
		Expiration:  expiration.Fixed,
		WritePolicy: writepolicy.Through,
	}
}

/*
FromEnv builds a Config from Default, then the YAML file named by
CACHE_CONFIG (if any), then individual CACHE_* variables.

A set-but-malformed variable is a CodeInvalidConfig error. A networked
backend requested without a URL is NOT an error here; the provider factory
reports it when it tries to build the backend.
*/
func FromEnv() (Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv(EnvConfigFile); ok && path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if v, ok := lookup(EnvUseNetworked); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, invalid(EnvUseNetworked, v, err)
		}
		cfg.UseNetworked = b
	}
	if v, ok := lookup(EnvNetworkedURL); ok {
		cfg.NetworkedURL = v
	}
	if v, ok := lookup(EnvKeyPrefix); ok {
		cfg.KeyPrefix = v
	}
	if v, ok := lookup(EnvLocalFront); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, invalid(EnvLocalFront, v, err)
		}
		cfg.LocalFront = b
	}
	if v, ok := lookup(EnvMaxSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, invalid(EnvMaxSize, v, err)
		}
		cfg.MaxSize = n
	}
	if v, ok := lookup(EnvDefaultTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, invalid(EnvDefaultTTL, v, err)
		}
		cfg.DefaultTTL = d
	}
	if v, ok := lookup(EnvEviction); ok {
		p, err := eviction.ParsePolicyType(v)
		if err != nil {
			return Config{}, invalid(EnvEviction, v, err)
		}
		cfg.Eviction = p
	}
	if v, ok := lookup(EnvExpiration); ok {
		k, err := expiration.ParseKind(v)
		if err != nil {
			return Config{}, invalid(EnvExpiration, v, err)
		}
		cfg.Expiration = k
	}
	if v, ok := lookup(EnvMaxAge); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, invalid(EnvMaxAge, v, err)
		}
		cfg.MaxAge = d
	}
	if v, ok := lookup(EnvWritePolicy); ok {
		m, err := writepolicy.ParseMode(v)
		if err != nil {
			return Config{}, invalid(EnvWritePolicy, v, err)
		}
		cfg.WritePolicy = m
	}
	if v, ok := lookup(EnvRefresh); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, invalid(EnvRefresh, v, err)
		}
		cfg.RefreshWindow = d
	}

	return cfg, nil
}

// Load reads a YAML file over Default. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "failed to read cache config file"),
			"path", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.WithContext(
			errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse cache config file"),
			"path", path)
	}

	p, err := eviction.ParsePolicyType(string(cfg.Eviction))
	if err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid eviction policy in config file")
	}
	cfg.Eviction = p

	k, err := expiration.ParseKind(string(cfg.Expiration))
	if err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid expiration strategy in config file")
	}
	cfg.Expiration = k

	m, err := writepolicy.ParseMode(string(cfg.WritePolicy))
	if err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInvalidConfig, "invalid write policy in config file")
	}
	cfg.WritePolicy = m

	log.WithField("path", path).Debug("loaded cache config file")
	return cfg, nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func invalid(name, value string, cause error) error {
	var err error
	if cause != nil {
		err = errors.Wrapf(cause, errors.CodeInvalidConfig, "invalid value for %s", name)
	} else {
		err = errors.Newf(errors.CodeInvalidConfig, "invalid value for %s", name)
	}
	return errors.WithContext(err, "value", value)
}
