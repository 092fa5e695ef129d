package provider

import "github.com/krisalay/cacheprovider/types"

// Option configures New.
type Option func(*options)

type options struct {
	metrics func(backend string) types.Metrics
}

// WithMetrics supplies a metrics sink per backend. The function is called
// once for every store New builds.
func WithMetrics(fn func(backend string) types.Metrics) Option {
	return func(o *options) { o.metrics = fn }
}
