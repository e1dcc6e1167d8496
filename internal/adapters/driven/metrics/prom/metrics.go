// Package prom records collection metrics with Prometheus collectors and
// exposes them for scraping.
package prom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "pricecollect"

// Metrics holds the Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CatalogLoads        *prometheus.CounterVec
	CatalogRecords      prometheus.Gauge
	CatalogLoadDuration prometheus.Histogram
	Suggestions         *prometheus.CounterVec
	SuggestionResults   prometheus.Histogram
	ResolveLookups      *prometheus.CounterVec
	Observations        *prometheus.CounterVec
	Persists            *prometheus.CounterVec
	PersistDuration     prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CatalogLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_loads_total",
				Help:      "Catalog load attempts by outcome.",
			},
			[]string{"success"},
		),
		CatalogRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_records",
				Help:      "Records in the catalog generation being served.",
			},
		),
		CatalogLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_load_duration_seconds",
				Help:      "Time to fetch, decode and index a snapshot.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		Suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suggestions_total",
				Help:      "Suggestion evaluations by search field.",
			},
			[]string{"field"},
		),
		SuggestionResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "suggestion_results",
				Help:      "Suggestions returned per evaluation.",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		ResolveLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolve_lookups_total",
				Help:      "Product resolutions by field and cache status.",
			},
			[]string{"field", "cache"},
		),
		Observations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "observations_confirmed_total",
				Help:      "Confirm attempts by outcome.",
			},
			[]string{"outcome"},
		),
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persists_total",
				Help:      "Observation list writes by outcome.",
			},
			[]string{"success"},
		),
		PersistDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "persist_duration_seconds",
				Help:      "Time to write the observation list.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
	}

	m.registry.MustRegister(
		m.CatalogLoads,
		m.CatalogRecords,
		m.CatalogLoadDuration,
		m.Suggestions,
		m.SuggestionResults,
		m.ResolveLookups,
		m.Observations,
		m.Persists,
		m.PersistDuration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CatalogLoaded records a load attempt.
func (m *Metrics) CatalogLoaded(success bool, records int, took time.Duration) {
	m.CatalogLoads.WithLabelValues(strconv.FormatBool(success)).Inc()
	m.CatalogLoadDuration.Observe(took.Seconds())
	if success {
		m.CatalogRecords.Set(float64(records))
	}
}

// SuggestionServed records one suggestion evaluation.
func (m *Metrics) SuggestionServed(field string, results int) {
	m.Suggestions.WithLabelValues(field).Inc()
	m.SuggestionResults.Observe(float64(results))
}

// ResolveLookup records a product resolution.
func (m *Metrics) ResolveLookup(field string, cacheHit bool) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	m.ResolveLookups.WithLabelValues(field, cache).Inc()
}

// ObservationConfirmed records a confirm attempt outcome.
func (m *Metrics) ObservationConfirmed(outcome string) {
	m.Observations.WithLabelValues(outcome).Inc()
}

// PersistCompleted records a list write.
func (m *Metrics) PersistCompleted(success bool, took time.Duration) {
	m.Persists.WithLabelValues(strconv.FormatBool(success)).Inc()
	m.PersistDuration.Observe(took.Seconds())
}
