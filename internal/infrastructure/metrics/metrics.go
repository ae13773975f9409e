// Package metrics provides Prometheus metrics for the inference service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeInferenceError     = "inference_error"
	OutcomeModelInconsistency = "model_inconsistency"
)

// Audit write results
const (
	AuditOK      = "ok"
	AuditError   = "error"
	AuditDropped = "dropped"
)

// Metrics holds the Prometheus collectors of the inference pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Predictions     *prometheus.CounterVec // Prediction requests by outcome
	Latency         prometheus.Histogram   // Classification latency in seconds
	Confidence      prometheus.Histogram   // Distribution of returned confidence scores
	AuditWrites     *prometheus.CounterVec // Audit write attempts by result
	AuditQueueDepth prometheus.Gauge       // Records waiting in the async audit queue
}

// New creates and registers all metrics using the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing)
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total number of prediction requests by outcome",
		}, []string{"outcome"}),
		Latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inference_duration_seconds",
			Help:    "Time spent classifying a request",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inference_confidence",
			Help:    "Confidence of returned predictions",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		AuditWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Total number of audit write attempts by result",
		}, []string{"result"}),
		AuditQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Audit records waiting to be written",
		}),
	}
}

// ObservePrediction records the outcome of one prediction request
func (m *Metrics) ObservePrediction(outcome string, elapsed time.Duration, confidence float64) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.Latency.Observe(elapsed.Seconds())
		m.Confidence.Observe(confidence)
	}
}

// ObserveAudit records the result of one audit write attempt
func (m *Metrics) ObserveAudit(result string) {
	if m == nil {
		return
	}
	m.AuditWrites.WithLabelValues(result).Inc()
}

// SetAuditQueueDepth reports the async audit backlog
func (m *Metrics) SetAuditQueueDepth(n int) {
	if m == nil {
		return
	}
	m.AuditQueueDepth.Set(float64(n))
}
