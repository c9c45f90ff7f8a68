package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFile(t *testing.T) {
	m := DefaultMetrics
	before := testutil.ToFloat64(m.FilesTotal.WithLabelValues("moved"))
	m.RecordFile("moved")
	m.RecordFile("moved")
	if got := testutil.ToFloat64(m.FilesTotal.WithLabelValues("moved")) - before; got != 2 {
		t.Errorf("files_total{outcome=moved} grew by %v, want 2", got)
	}
}

func TestRecordWebhook(t *testing.T) {
	m := DefaultMetrics
	sent := testutil.ToFloat64(m.WebhookDeliveries.WithLabelValues("sent"))
	failed := testutil.ToFloat64(m.WebhookDeliveries.WithLabelValues("error"))

	m.RecordWebhook(nil)
	m.RecordWebhook(errors.New("status 500"))

	if got := testutil.ToFloat64(m.WebhookDeliveries.WithLabelValues("sent")) - sent; got != 1 {
		t.Errorf("sent grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WebhookDeliveries.WithLabelValues("error")) - failed; got != 1 {
		t.Errorf("error grew by %v, want 1", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := DefaultMetrics
	before := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("runs", "run_summary"))
	m.RecordKafkaPublish("runs", "run_summary", errors.New("broker down"), 0.01)
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("runs", "run_summary")) - before; got != 1 {
		t.Errorf("kafka errors grew by %v, want 1", got)
	}
}

func TestRecordCategory(t *testing.T) {
	m := DefaultMetrics
	before := testutil.ToFloat64(m.ClassificationsTotal.WithLabelValues("Other"))
	m.RecordCategory("Other")
	if got := testutil.ToFloat64(m.ClassificationsTotal.WithLabelValues("Other")) - before; got != 1 {
		t.Errorf("classifications_total{category=Other} grew by %v, want 1", got)
	}
}
