package transcriber

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TranscriptionMetricsRecorder records metrics about transcription jobs.
// The interface allows tests to inject a mock instead of Prometheus.
type TranscriptionMetricsRecorder interface {
	// RecordDuration records the end-to-end time of a transcription job.
	RecordDuration(provider string, duration time.Duration)

	// RecordFailure increments the failure counter for a provider.
	RecordFailure(provider string)
}

// PrometheusTranscriptionMetrics implements TranscriptionMetricsRecorder
// using Prometheus metrics.
type PrometheusTranscriptionMetrics struct {
	durationHistogram *prometheus.HistogramVec
	failureCounter    *prometheus.CounterVec
}

var (
	transcriptionMetricsInstance *PrometheusTranscriptionMetrics
	transcriptionMetricsOnce     sync.Once
)

// NewPrometheusTranscriptionMetrics creates the Prometheus-based metrics
// recorder. Singleton so repeated construction in tests does not trigger
// duplicate registration.
func NewPrometheusTranscriptionMetrics() *PrometheusTranscriptionMetrics {
	transcriptionMetricsOnce.Do(func() {
		transcriptionMetricsInstance = &PrometheusTranscriptionMetrics{
			durationHistogram: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "transcription_duration_seconds",
				Help:    "Time taken to transcribe an audio file",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			}, []string{"provider"}),
			failureCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "transcription_failures_total",
				Help: "Total number of failed transcription jobs",
			}, []string{"provider"}),
		}
	})
	return transcriptionMetricsInstance
}

// RecordDuration implements TranscriptionMetricsRecorder.RecordDuration.
func (p *PrometheusTranscriptionMetrics) RecordDuration(provider string, duration time.Duration) {
	p.durationHistogram.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFailure implements TranscriptionMetricsRecorder.RecordFailure.
func (p *PrometheusTranscriptionMetrics) RecordFailure(provider string) {
	p.failureCounter.WithLabelValues(provider).Inc()
}
