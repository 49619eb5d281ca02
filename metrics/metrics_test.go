package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRouteHitIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordRouteHit("GET", "/ping")
	m.RecordRouteHit("GET", "/ping")
	got := testutil.ToFloat64(m.RouteHits.WithLabelValues("GET", "/ping"))
	if got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
}

func TestSetObserveSubscribersGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SetObserveSubscribers("/sensors/temp", 3)
	got := testutil.ToFloat64(m.ObserveSubscribers.WithLabelValues("/sensors/temp"))
	if got != 3 {
		t.Fatalf("expected gauge 3, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRouteHit("GET", "/x")
	m.RecordResponse("2.05")
	m.SetObserveSubscribers("/x", 1)
	m.SetEventBusQueueDepth(5)
}
