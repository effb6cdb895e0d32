// Package metrics exposes relay counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons.
const (
	DropBackpressure = "backpressure"
	DropRateLimited  = "rate_limited"
	DropBadFrame     = "bad_frame"
	DropUnknownEvent = "unknown_event"
	DropNoTarget     = "no_target"
)

// Metrics owns its registry so several servers can live in one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg         *prometheus.Registry
	connections prometheus.Gauge
	inbound     *prometheus.CounterVec
	outbound    *prometheus.CounterVec
	dropped     *prometheus.CounterVec
}

// New registers the collectors. rooms reports the live room count.
func New(rooms func() int) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rendezvous",
			Name:      "connections",
			Help:      "Open signaling connections.",
		}),
		inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "events_received_total",
			Help:      "Inbound signaling events by name.",
		}, []string{"event"}),
		outbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "events_sent_total",
			Help:      "Outbound frames queued by event name.",
		}, []string{"event"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rendezvous",
			Name:      "events_dropped_total",
			Help:      "Inbound or outbound events dropped by reason.",
		}, []string{"reason"}),
	}
	m.reg.MustRegister(m.connections, m.inbound, m.outbound, m.dropped)
	if rooms != nil {
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "rendezvous",
			Name:      "rooms",
			Help:      "Rooms in the directory.",
		}, func() float64 { return float64(rooms()) }))
	}
	return m
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) Received(event string) {
	if m != nil {
		m.inbound.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) Sent(event string, n int) {
	if m != nil && n > 0 {
		m.outbound.WithLabelValues(event).Add(float64(n))
	}
}

func (m *Metrics) Dropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
