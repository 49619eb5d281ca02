// Package metrics exposes the framework's Prometheus instrumentation
// (SPEC_FULL.md A5): route hit counts, response code counts, Observe
// subscriber gauges, and event bus queue depth.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the framework's Prometheus collectors. A nil *Metrics is
// valid and every method becomes a no-op, the same nil-safe pattern the
// event bus uses for its optional observer bridge.
type Metrics struct {
	RouteHits         *prometheus.CounterVec
	Responses         *prometheus.CounterVec
	ObserveSubscribers *prometheus.GaugeVec
	EventBusQueueDepth prometheus.Gauge
}

// New registers and returns the framework's collectors against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to use the global one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RouteHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coap_route_hits_total",
			Help: "Number of requests dispatched to each route.",
		}, []string{"method", "pattern"}),
		Responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coap_responses_total",
			Help: "Number of responses sent, by response code.",
		}, []string{"code"}),
		ObserveSubscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "coap_observe_subscribers",
			Help: "Current number of active Observe subscriptions per path.",
		}, []string{"path"}),
		EventBusQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coap_eventbus_queue_depth",
			Help: "Approximate number of messages buffered in the event bus ring buffers.",
		}),
	}
	reg.MustRegister(m.RouteHits, m.Responses, m.ObserveSubscribers, m.EventBusQueueDepth)
	return m
}

func (m *Metrics) RecordRouteHit(method, pattern string) {
	if m == nil {
		return
	}
	m.RouteHits.WithLabelValues(method, pattern).Inc()
}

func (m *Metrics) RecordResponse(code string) {
	if m == nil {
		return
	}
	m.Responses.WithLabelValues(code).Inc()
}

func (m *Metrics) SetObserveSubscribers(path string, n int) {
	if m == nil {
		return
	}
	m.ObserveSubscribers.WithLabelValues(path).Set(float64(n))
}

func (m *Metrics) SetEventBusQueueDepth(n int) {
	if m == nil {
		return
	}
	m.EventBusQueueDepth.Set(float64(n))
}
