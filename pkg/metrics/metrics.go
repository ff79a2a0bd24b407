// Package metrics defines the Prometheus collectors for queries and index builds and exposes an
// HTTP handler for scraping.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal        *prometheus.CounterVec
	QueryLatency        *prometheus.HistogramVec
	QueryResultsCount   prometheus.Histogram
	BuildPhaseDuration  *prometheus.HistogramVec
	DocumentsTotal      *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates all collectors on a fresh registry that also carries the go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drive_search_queries_total",
				Help: "Total queries by kind (search, correct) and status (ok, absent, error).",
			},
			[]string{"kind", "status"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drive_search_query_latency_seconds",
				Help:    "Query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"kind"},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drive_search_results_count",
				Help:    "Number of documents returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		BuildPhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drive_search_build_phase_seconds",
				Help:    "Duration of index build phases (retrieve, download, build_index, total).",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"phase"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drive_search_documents_total",
				Help: "Documents seen by index builds by status (indexed, skipped).",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.BuildPhaseDuration,
		m.DocumentsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records a finished search or correct query. Queries against an identifier without an
// index are counted as absent, not as errors.
func (m *Metrics) ObserveQuery(kind string, d time.Duration, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, pkg.ErrIndexAbsent) {
			status = "absent"
		}
	}
	m.QueriesTotal.WithLabelValues(kind, status).Inc()
	m.QueryLatency.WithLabelValues(kind).Observe(d.Seconds())
	if kind == "search" && err == nil {
		m.QueryResultsCount.Observe(float64(results))
	}
}

func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	m.BuildPhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) ObserveDocuments(indexed, skipped int) {
	m.DocumentsTotal.WithLabelValues("indexed").Add(float64(indexed))
	m.DocumentsTotal.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
