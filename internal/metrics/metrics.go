// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meetsort"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Run metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastRunFinished prometheus.Gauge

	// File metrics
	FilesTotal     *prometheus.CounterVec
	FileErrors     *prometheus.CounterVec
	UserListErrors *prometheus.CounterVec

	// Classifier metrics
	ClassificationsTotal  *prometheus.CounterVec
	ClassificationLatency prometheus.Histogram

	// Webhook metrics
	WebhookDeliveries *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of processing runs",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of processing runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		LastRunFinished: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_finished_timestamp_seconds",
			Help:      "Unix time of the last run that finished",
		}),

		FilesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Transcripts handled, by outcome",
		}, []string{"outcome"}),
		FileErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "Per-file failures, by step and error kind",
		}, []string{"step", "kind"}),
		UserListErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_list_errors_total",
			Help:      "Users whose transcripts could not be listed",
		}, []string{"kind"}),

		ClassificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Categories transcripts were filed under, after downgrade and fallback",
		}, []string{"category"}),
		ClassificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_latency_seconds",
			Help:      "Classifier call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		WebhookDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook notifications attempted, by result",
		}, []string{"result"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(status string, durationSeconds float64, finishedUnix float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
	m.LastRunFinished.Set(finishedUnix)
}

// RecordFile records a file outcome such as "moved" or "skipped".
func (m *Metrics) RecordFile(outcome string) {
	m.FilesTotal.WithLabelValues(outcome).Inc()
}

// RecordFileError records a per-file failure.
func (m *Metrics) RecordFileError(step, kind string) {
	m.FileErrors.WithLabelValues(step, kind).Inc()
}

// RecordUserListError records a user whose files could not be listed.
func (m *Metrics) RecordUserListError(kind string) {
	m.UserListErrors.WithLabelValues(kind).Inc()
}

// RecordClassifierCall records the latency of a classifier call.
func (m *Metrics) RecordClassifierCall(latencySeconds float64) {
	m.ClassificationLatency.Observe(latencySeconds)
}

// RecordCategory records the category a transcript was filed under, after
// the confidence downgrade and the fallback to Other.
func (m *Metrics) RecordCategory(category string) {
	m.ClassificationsTotal.WithLabelValues(category).Inc()
}

// RecordWebhook records a webhook delivery attempt.
func (m *Metrics) RecordWebhook(err error) {
	if err != nil {
		m.WebhookDeliveries.WithLabelValues("error").Inc()
		return
	}
	m.WebhookDeliveries.WithLabelValues("sent").Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
