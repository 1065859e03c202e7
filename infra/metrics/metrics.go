// Package metrics exposes the engine's reclamation figures to
// Prometheus. Collectors pull from atomic counters on scrape, so the
// writer thread never blocks for observability.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source is the engine view the collectors read. Every method must be
// safe to call from the scrape goroutine.
type Source interface {
	Generation() uint64
	PendingGarbage() int
	ActiveReaders() int
	Lag() uint64
	Retired() uint64
	Reclaimed() uint64
}

type Metrics struct {
	registry *prometheus.Registry
}

func New(src Source) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "qsbr",
			Name:      "generation",
			Help:      "Current epoch of the reclamation engine.",
		}, func() float64 { return float64(src.Generation()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "qsbr",
			Name:      "pending_garbage",
			Help:      "Retired values awaiting destruction.",
		}, func() float64 { return float64(src.PendingGarbage()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "qsbr",
			Name:      "reader_lag",
			Help:      "Epoch advances the slowest reader has not acknowledged.",
		}, func() float64 { return float64(src.Lag()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "qsbr",
			Name:      "active_readers",
			Help:      "Registered reader handles.",
		}, func() float64 { return float64(src.ActiveReaders()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "qsbr",
			Name:      "retired_total",
			Help:      "Values retired since the run began.",
		}, func() float64 { return float64(src.Retired()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "qsbr",
			Name:      "reclaimed_total",
			Help:      "Values destroyed since the run began.",
		}, func() float64 { return float64(src.Reclaimed()) }),
	)
	return &Metrics{registry: reg}
}

// Handler serves this registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
