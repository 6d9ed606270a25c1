package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWebhookMetricsRecordsSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)

	m.IncDelivery("orders/create", "success")
	m.IncDelivery("orders/create", "success")
	m.IncDelivery("", "failed")
	m.ObserveDuration("orders/create", 120*time.Millisecond)
	m.IncSkuMatch("alias")
	m.IncSkuMiss("shopify_variant_id")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	deliveries, ok := byName["webhook_deliveries_total"]
	if !ok {
		t.Fatal("webhook_deliveries_total not registered")
	}
	var successCount float64
	for _, metric := range deliveries.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" && label.GetValue() == "success" {
				successCount = metric.GetCounter().GetValue()
			}
			if label.GetName() == "topic" && label.GetValue() == "unknown" {
				if metric.GetCounter().GetValue() != 1 {
					t.Fatalf("empty topic should normalize to unknown")
				}
			}
		}
	}
	if successCount != 2 {
		t.Fatalf("expected 2 successes, got %v", successCount)
	}

	if _, ok := byName["sku_resolution_matches_total"]; !ok {
		t.Fatal("sku match counter not registered")
	}
	if _, ok := byName["webhook_handler_duration_seconds"]; !ok {
		t.Fatal("duration histogram not registered")
	}
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.IncDelivery("orders/create", "success")
	m.ObserveDuration("orders/create", time.Second)
	m.IncSkuMatch("alias")
	m.IncSkuMiss("shopify_variant_id")

	unregistered := NewWebhookMetrics(nil)
	unregistered.IncDelivery("orders/create", "success")
}
