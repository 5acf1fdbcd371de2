// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	AnalysisErrors   prometheus.Counter

	// Upstream metrics
	RPCCallLatency     *prometheus.HistogramVec
	IndexerCallLatency *prometheus.HistogramVec

	// Degradation metrics
	DegradedFeatures *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ethyr_engine"
	}

	return &Metrics{
		// Analysis metrics
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Total number of analyses by address type and risk tier",
		}, []string{"address_type", "risk_tier"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"address_type"}),
		AnalysisErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "errors_total",
			Help:      "Total number of analyses that ended in an error report",
		}),

		// Upstream metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ethereum",
			Name:      "rpc_call_latency_seconds",
			Help:      "Ethereum RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		IndexerCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "call_latency_seconds",
			Help:      "Indexer API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),

		// Degradation metrics
		DegradedFeatures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "degraded_features_total",
			Help:      "Total number of analyses with a feature degraded to its default",
		}, []string{"feature"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAnalysis records one completed analysis.
func RecordAnalysis(addressType, riskTier string, durationSeconds float64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(addressType, riskTier).Inc()
	DefaultMetrics.AnalysisDuration.WithLabelValues(addressType).Observe(durationSeconds)
}

// RecordAnalysisError increments the error report counter.
func RecordAnalysisError() {
	DefaultMetrics.AnalysisErrors.Inc()
}

// RecordRPCLatency records Ethereum RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordIndexerLatency records indexer API call latency.
func RecordIndexerLatency(action string, seconds float64) {
	DefaultMetrics.IndexerCallLatency.WithLabelValues(action).Observe(seconds)
}

// RecordDegradedFeature records a feature that fell back to its default.
func RecordDegradedFeature(feature string) {
	DefaultMetrics.DegradedFeatures.WithLabelValues(feature).Inc()
}
