// Package emitter exposes teardown progress as Prometheus metrics.
package emitter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yairfalse/purku/types"
)

// Prometheus counts outcomes on its own registry so runs embedded in a
// larger process never collide with the host's default registry.
type Prometheus struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
}

// NewPrometheus creates an emitter with a fresh registry.
func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purku_outcomes_total",
			Help: "Teardown outcomes by resource type and outcome",
		},
		[]string{"outcome", "resource_type", "region"},
	)
	registry.MustRegister(outcomes)
	return &Prometheus{registry: registry, outcomes: outcomes}
}

// Observe counts one outcome.
func (p *Prometheus) Observe(rec types.Record) {
	p.outcomes.WithLabelValues(
		string(rec.Outcome),
		string(rec.Resource.Type),
		rec.Resource.Scope.Region,
	).Inc()
}

// Handler returns the scrape endpoint for this emitter's registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
