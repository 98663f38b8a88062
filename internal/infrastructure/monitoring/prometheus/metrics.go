// Package prometheus exposes the platform's application metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rankforge"

// Metrics bundles every application-level collector.
type Metrics struct {
	registry *prometheus.Registry

	// Research run lifecycle.
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec

	// Keyword pipeline.
	KeywordsDiscovered prometheus.Counter
	KeywordsPersisted  prometheus.Counter
	SourceCalls        *prometheus.CounterVec
	DegradedResults    *prometheus.CounterVec

	// HTTP server.
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_runs_started_total",
			Help:      "Research runs moved from pending to processing.",
		}),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_runs_completed_total",
			Help:      "Research runs that reached the completed state.",
		}),
		RunsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_runs_failed_total",
			Help:      "Research runs that reached the failed state.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_run_duration_seconds",
			Help:      "End-to-end research run duration.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 900},
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "research_stage_duration_seconds",
			Help:      "Per-stage duration of the research pipeline.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),

		KeywordsDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_discovered_total",
			Help:      "Unique keyword candidates aggregated across sources.",
		}),
		KeywordsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_persisted_total",
			Help:      "Keywords written to storage after ranking.",
		}),
		SourceCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_calls_total",
			Help:      "Keyword source invocations by source and outcome.",
		}, []string{"source", "outcome"}),
		DegradedResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_results_total",
			Help:      "AI stages that fell back to degraded output.",
		}, []string{"stage"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
