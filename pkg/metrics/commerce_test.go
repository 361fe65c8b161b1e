package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCommerceMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCommerceMetrics(reg)
	metrics.IncCompletion("success")
	metrics.IncWebhookDelivery("order_placed", "failure")
	metrics.ObserveWebhookDuration("order_placed", 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_completions", "outcome", "success"); err != nil {
		t.Fatalf("fetch completions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected completions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "webhook_deliveries", "event", "order_placed"); err != nil {
		t.Fatalf("fetch deliveries: %v", err)
	} else if got != 1 {
		t.Fatalf("expected deliveries=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "webhook_delivery_duration_seconds", "event", "order_placed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCommerceMetricsNilSafe(t *testing.T) {
	var metrics *CommerceMetrics
	metrics.IncCompletion("success")
	metrics.IncWebhookDelivery("order_placed", "failure")
	metrics.ObserveWebhookDuration("order_placed", time.Second)

	empty := NewCommerceMetrics(nil)
	empty.IncCompletion("")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
