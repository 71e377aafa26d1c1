package synthesizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SynthesisMetricsRecorder records metrics about article generation.
// The interface allows tests to inject a mock instead of Prometheus.
type SynthesisMetricsRecorder interface {
	// RecordLength records the length of a generated article in bytes.
	RecordLength(provider string, length int)

	// RecordDuration records the time taken by one generation call.
	RecordDuration(provider string, duration time.Duration)

	// RecordFailure increments the failure counter for a provider.
	RecordFailure(provider string)
}

// PrometheusSynthesisMetrics implements SynthesisMetricsRecorder using
// Prometheus metrics.
type PrometheusSynthesisMetrics struct {
	lengthHistogram   *prometheus.HistogramVec
	durationHistogram *prometheus.HistogramVec
	failureCounter    *prometheus.CounterVec
}

var (
	synthesisMetricsInstance *PrometheusSynthesisMetrics
	synthesisMetricsOnce     sync.Once
)

// NewPrometheusSynthesisMetrics creates the Prometheus-based metrics
// recorder. Singleton so repeated construction in tests does not
// trigger duplicate registration.
func NewPrometheusSynthesisMetrics() *PrometheusSynthesisMetrics {
	synthesisMetricsOnce.Do(func() {
		synthesisMetricsInstance = &PrometheusSynthesisMetrics{
			lengthHistogram: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "article_synthesis_length_bytes",
				Help:    "Distribution of generated article lengths",
				Buckets: prometheus.ExponentialBuckets(256, 2, 8),
			}, []string{"provider"}),
			durationHistogram: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "article_synthesis_duration_seconds",
				Help:    "Time taken to generate an article via AI API",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}, []string{"provider"}),
			failureCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "article_synthesis_failures_total",
				Help: "Total number of failed article generation calls",
			}, []string{"provider"}),
		}
	})
	return synthesisMetricsInstance
}

// RecordLength implements SynthesisMetricsRecorder.RecordLength.
func (p *PrometheusSynthesisMetrics) RecordLength(provider string, length int) {
	p.lengthHistogram.WithLabelValues(provider).Observe(float64(length))
}

// RecordDuration implements SynthesisMetricsRecorder.RecordDuration.
func (p *PrometheusSynthesisMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFailure implements SynthesisMetricsRecorder.RecordFailure.
func (p *PrometheusSynthesisMetrics) RecordFailure(provider string) {
	p.failureCounter.WithLabelValues(provider).Inc()
}
