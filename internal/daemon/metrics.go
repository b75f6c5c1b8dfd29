package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcdickinson/rsdoc/internal/docs"
)

// Metrics holds the daemon's prometheus collectors. Each Server owns its
// own registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
}

func NewMetrics(cache *docs.Cache) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsdoc_requests_total",
			Help: "Total number of daemon requests",
		},
		[]string{"route", "code"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsdoc_request_duration_seconds",
			Help:    "Duration of daemon requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.FetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsdoc_fetches_total",
			Help: "Total number of docs.rs fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.FetchDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsdoc_fetch_duration_seconds",
			Help:    "Duration of docs.rs fetch and decode in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	stat := func(name, help string, value func(docs.CacheStats) float64) {
		factory.NewCounterFunc(
			prometheus.CounterOpts{Name: name, Help: help},
			func() float64 { return value(cache.Stats()) },
		)
	}
	stat("rsdoc_cache_hits_total", "Cache lookups served from memory",
		func(s docs.CacheStats) float64 { return float64(s.Hits) })
	stat("rsdoc_cache_misses_total", "Cache lookups that required a fetch",
		func(s docs.CacheStats) float64 { return float64(s.Misses) })
	stat("rsdoc_cache_evictions_total", "Entries evicted at capacity",
		func(s docs.CacheStats) float64 { return float64(s.Evictions) })
	stat("rsdoc_cache_expirations_total", "Entries dropped after their TTL",
		func(s docs.CacheStats) float64 { return float64(s.Expirations) })

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "rsdoc_cache_entries",
			Help: "Crates currently held in the cache",
		},
		func() float64 { return float64(cache.Len()) },
	)

	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a finished request.
func (m *Metrics) RecordRequest(route string, code int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// InstrumentFetcher wraps f so every fetch is counted by outcome.
func (m *Metrics) InstrumentFetcher(f docs.CrateFetcher) docs.CrateFetcher {
	return &instrumentedFetcher{next: f, metrics: m}
}

type instrumentedFetcher struct {
	next    docs.CrateFetcher
	metrics *Metrics
}

func (f *instrumentedFetcher) Fetch(ctx context.Context, name, version string) (*docs.RustdocCrate, error) {
	start := time.Now()
	crate, err := f.next.Fetch(ctx, name, version)
	f.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	f.metrics.FetchesTotal.WithLabelValues(fetchOutcome(err)).Inc()
	return crate, err
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, docs.ErrNotFound):
		return "not_found"
	case errors.Is(err, docs.ErrDocsUnavailable):
		return "docs_unavailable"
	case errors.Is(err, docs.ErrDecompress):
		return "decompress"
	case errors.Is(err, docs.ErrFormatMismatch):
		return "format_mismatch"
	case errors.Is(err, docs.ErrParse):
		return "parse"
	}
	return "transport"
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
