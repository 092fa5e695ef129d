package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/config"
	"github.com/krisalay/cacheprovider/eviction"
	"github.com/krisalay/cacheprovider/expiration"
	"github.com/krisalay/cacheprovider/metrics"
	"github.com/krisalay/cacheprovider/provider"
	"github.com/krisalay/cacheprovider/types"
	"github.com/krisalay/cacheprovider/writepolicy"
)

const metricsNamespace = "cacheprovider"

// GlobalFlags select and tune the backend. Each one falls back to the
// CACHE_* variable config.FromEnv reads.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "redis",
		Usage:   "use the Redis backend",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvUseNetworked)),
	},
	&cli.StringFlag{
		Name:    "redis-url",
		Usage:   "Redis connection URL",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvNetworkedURL)),
	},
	&cli.StringFlag{
		Name:    "key-prefix",
		Usage:   "namespace for Redis keys",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvKeyPrefix)),
	},
	&cli.BoolFlag{
		Name:    "local-front",
		Usage:   "keep a local copy in front of Redis",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvLocalFront)),
	},
	&cli.IntFlag{
		Name:    "max-size",
		Usage:   "local store capacity",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvMaxSize)),
		Value:   config.DefaultMaxSize,
	},
	&cli.DurationFlag{
		Name:    "ttl",
		Usage:   "default entry TTL",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvDefaultTTL)),
		Value:   api.DefaultTTL,
	},
	&cli.StringFlag{
		Name:    "eviction",
		Usage:   "local eviction policy (FIFO, LRU, LFU)",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvEviction)),
		Value:   string(eviction.FIFO),
	},
	&cli.StringFlag{
		Name:    "expiration",
		Usage:   "local expiration strategy (fixed, sliding)",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvExpiration)),
		Value:   string(expiration.Fixed),
	},
	&cli.DurationFlag{
		Name:    "max-age",
		Usage:   "lifetime cap for sliding entries",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvMaxAge)),
	},
	&cli.StringFlag{
		Name:    "write-policy",
		Usage:   "how local-front writes reach Redis (through, back)",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvWritePolicy)),
		Value:   string(writepolicy.Through),
	},
	&cli.DurationFlag{
		Name:    "refresh-window",
		Usage:   "re-read local-front entries from Redis this close to expiry",
		Sources: cli.NewValueSourceChain(cli.EnvVar(config.EnvRefresh)),
	},
}

// NewApp builds the root command.
func NewApp() *cli.Command {
	app := &cli.Command{
		Name:  "cacheprovider",
		Usage: "pluggable cache providers",
		Flags: GlobalFlags,
	}

	app.Commands = append(app.Commands,
		ConfigCommandBuilder(),
		DemoCommandBuilder(),
		BenchCommandBuilder(),
	)

	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}

// configFromCommand layers flags that were set over config.FromEnv.
func configFromCommand(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("redis") {
		cfg.UseNetworked = cmd.Bool("redis")
	}
	if cmd.IsSet("redis-url") {
		cfg.NetworkedURL = cmd.String("redis-url")
	}
	if cmd.IsSet("key-prefix") {
		cfg.KeyPrefix = cmd.String("key-prefix")
	}
	if cmd.IsSet("local-front") {
		cfg.LocalFront = cmd.Bool("local-front")
	}
	if cmd.IsSet("max-size") {
		if n := cmd.Int("max-size"); n > 0 {
			cfg.MaxSize = n
		} else {
			return config.Config{}, fmt.Errorf("--max-size must be positive, got %d", n)
		}
	}
	if cmd.IsSet("ttl") {
		if d := cmd.Duration("ttl"); d > 0 {
			cfg.DefaultTTL = d
		} else {
			return config.Config{}, fmt.Errorf("--ttl must be positive, got %s", d)
		}
	}
	if cmd.IsSet("eviction") {
		p, err := eviction.ParsePolicyType(cmd.String("eviction"))
		if err != nil {
			return config.Config{}, err
		}
		cfg.Eviction = p
	}
	if cmd.IsSet("expiration") {
		k, err := expiration.ParseKind(cmd.String("expiration"))
		if err != nil {
			return config.Config{}, err
		}
		cfg.Expiration = k
	}
	if cmd.IsSet("max-age") {
		cfg.MaxAge = cmd.Duration("max-age")
	}
	if cmd.IsSet("write-policy") {
		m, err := writepolicy.ParseMode(cmd.String("write-policy"))
		if err != nil {
			return config.Config{}, err
		}
		cfg.WritePolicy = m
	}
	if cmd.IsSet("refresh-window") {
		cfg.RefreshWindow = cmd.Duration("refresh-window")
	}

	return cfg, nil
}

// openProvider builds the configured provider with Prometheus counters
// registered on reg.
func openProvider(cfg config.Config, reg prometheus.Registerer) (api.Provider, error) {
	return provider.New(cfg, provider.WithMetrics(func(backend string) types.Metrics {
		return metrics.NewPrometheus(metricsNamespace, backend, reg)
	}))
}

// writeMetrics prints every counter gathered from g, one per line.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\n==================== METRICS ====================")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			fmt.Fprintf(w, "%-45s %-16s %v\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}

// ConfigCommandBuilder prints the effective configuration.
func ConfigCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective cache configuration",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.Root().Writer)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
