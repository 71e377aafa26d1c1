package generate

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetricsRecorder records metrics about generation pipeline
// runs.
type PipelineMetricsRecorder interface {
	// RecordStageDuration records the duration of one pipeline stage.
	RecordStageDuration(stage string, duration time.Duration)

	// RecordStageFailure increments the failure counter for a stage.
	RecordStageFailure(stage string)

	// RecordPipelineDuration records the end-to-end duration of a
	// successful pipeline run.
	RecordPipelineDuration(duration time.Duration)
}

// PrometheusPipelineMetrics implements PipelineMetricsRecorder using
// Prometheus metrics.
type PrometheusPipelineMetrics struct {
	stageDuration    *prometheus.HistogramVec
	stageFailures    *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
}

var (
	pipelineMetricsInstance *PrometheusPipelineMetrics
	pipelineMetricsOnce     sync.Once
)

// NewPrometheusPipelineMetrics creates the Prometheus-based metrics
// recorder. Singleton so repeated construction in tests does not
// trigger duplicate registration.
func NewPrometheusPipelineMetrics() *PrometheusPipelineMetrics {
	pipelineMetricsOnce.Do(func() {
		pipelineMetricsInstance = &PrometheusPipelineMetrics{
			stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "generation_stage_duration_seconds",
				Help:    "Duration of individual generation pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			}, []string{"stage"}),
			stageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "generation_stage_failures_total",
				Help: "Total number of generation pipeline stage failures",
			}, []string{"stage"}),
			pipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "generation_pipeline_duration_seconds",
				Help:    "End-to-end duration of successful generation pipeline runs",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			}),
		}
	})
	return pipelineMetricsInstance
}

// RecordStageDuration implements PipelineMetricsRecorder.
func (p *PrometheusPipelineMetrics) RecordStageDuration(stage string, duration time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageFailure implements PipelineMetricsRecorder.
func (p *PrometheusPipelineMetrics) RecordStageFailure(stage string) {
	p.stageFailures.WithLabelValues(stage).Inc()
}

// RecordPipelineDuration implements PipelineMetricsRecorder.
func (p *PrometheusPipelineMetrics) RecordPipelineDuration(duration time.Duration) {
	p.pipelineDuration.Observe(duration.Seconds())
}
