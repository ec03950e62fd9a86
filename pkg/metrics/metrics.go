// Package metrics exposes Prometheus collectors for extraction and matching.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/partmatch/pkg/parts"
	"github.com/hazyhaar/partmatch/pkg/ranges"
)

// Metrics holds the partmatch collectors on a private registry, so several
// instances (tests, servers) can coexist in one process.
//
// Metrics:
//   - partmatch_documents_total{voltage,temperature} - documents extracted, by verdict
//   - partmatch_candidate_ranges_total{category} - distinct candidates found
//   - partmatch_discarded_matches_total{category,reason} - malformed, implausible, timeout
//   - partmatch_queries_total{result} - compatibility queries (ok, invalid)
//   - partmatch_compatible_components - size of the last query result
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal  *prometheus.CounterVec
	CandidatesTotal *prometheus.CounterVec
	DiscardedTotal  *prometheus.CounterVec
	QueriesTotal    *prometheus.CounterVec
	LastMatches     prometheus.Gauge
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DocumentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partmatch_documents_total",
				Help: "Datasheet documents extracted, labeled by voltage and temperature verdict",
			},
			[]string{"voltage", "temperature"},
		),
		CandidatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partmatch_candidate_ranges_total",
				Help: "Distinct candidate ranges found across documents",
			},
			[]string{"category"},
		),
		DiscardedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partmatch_discarded_matches_total",
				Help: "Pattern matches dropped during extraction",
			},
			[]string{"category", "reason"},
		),
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partmatch_queries_total",
				Help: "Compatibility queries, labeled by result",
			},
			[]string{"result"}, // "ok" or "invalid"
		),
		LastMatches: f.NewGauge(prometheus.GaugeOpts{
			Name: "partmatch_compatible_components",
			Help: "Number of components returned by the most recent valid query",
		}),
	}
}

// ObserveComponent implements parts.Observer.
func (m *Metrics) ObserveComponent(c *parts.Component, volts, temps ranges.Report) {
	m.DocumentsTotal.WithLabelValues(
		c.Verdict(ranges.Voltage).String(),
		c.Verdict(ranges.Temperature).String(),
	).Inc()

	for _, cat := range []ranges.Category{ranges.Voltage, ranges.Temperature} {
		if n := len(c.Candidates(cat)); n > 0 {
			m.CandidatesTotal.WithLabelValues(cat.String()).Add(float64(n))
		}
	}
	m.discarded(ranges.Voltage, volts)
	m.discarded(ranges.Temperature, temps)
}

func (m *Metrics) discarded(cat ranges.Category, r ranges.Report) {
	for reason, n := range map[string]int{
		"malformed":   r.Malformed,
		"implausible": r.Implausible,
		"timeout":     r.Timeouts,
	} {
		if n > 0 {
			m.DiscardedTotal.WithLabelValues(cat.String(), reason).Add(float64(n))
		}
	}
}

// ObserveQuery records the outcome of a compatibility query.
func (m *Metrics) ObserveQuery(matches int, err error) {
	switch {
	case err == nil:
		m.QueriesTotal.WithLabelValues("ok").Inc()
		m.LastMatches.Set(float64(matches))
	case errors.Is(err, parts.ErrInvalidQuery):
		m.QueriesTotal.WithLabelValues("invalid").Inc()
	default:
		m.QueriesTotal.WithLabelValues("error").Inc()
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
