// Package metrics provides a Prometheus sink for cache events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/krisalay/cacheprovider/types"
)

var _ types.Metrics = (*Prometheus)(nil)

// Prometheus counts cache events, labelled by backend.
type Prometheus struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Evictions   prometheus.Counter
	Expirations prometheus.Counter
	Refreshes   prometheus.Counter
}

// NewPrometheus registers the counters with reg. A nil reg uses the default
// registerer. Registering the same namespace and backend twice on one
// registry panics, as with any promauto metric.
func NewPrometheus(namespace, backend string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	labels := prometheus.Labels{"backend": backend}

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cache",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &Prometheus{
		Hits:        counter("hits_total", "Reads that returned a live value"),
		Misses:      counter("misses_total", "Reads that found nothing or an expired entry"),
		Evictions:   counter("evictions_total", "Entries removed because the store was full"),
		Expirations: counter("expirations_total", "Entries removed because their TTL passed"),
		Refreshes:   counter("refreshes_total", "Refresh hooks triggered by reads"),
	}
}

func (p *Prometheus) Hit()      { p.Hits.Inc() }
func (p *Prometheus) Miss()     { p.Misses.Inc() }
func (p *Prometheus) Eviction() { p.Evictions.Inc() }
func (p *Prometheus) Expire()   { p.Expirations.Inc() }
func (p *Prometheus) Refresh()  { p.Refreshes.Inc() }
