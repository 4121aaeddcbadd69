package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	providerAttempts  *prometheus.CounterVec
	commands          *prometheus.CounterVec
	deliveryFallbacks prometheus.Counter
	geoLookups        *prometheus.CounterVec
	pingLatency       prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		providerAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xmd_provider_attempts_total",
				Help: "Download provider attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xmd_commands_total",
				Help: "Handled chat commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		deliveryFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xmd_delivery_fallbacks_total",
				Help: "Videos re-sent as documents after a failed video delivery",
			},
		),
		geoLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xmd_geolocation_lookups_total",
				Help: "Geolocation lookups by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		pingLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xmd_ping_latency_seconds",
				Help:    "Round-trip latency measured by the ping command",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.providerAttempts, m.commands, m.deliveryFallbacks, m.geoLookups, m.pingLatency)
	return m
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveProvider records one provider attempt
func (m *Metrics) ObserveProvider(provider string, ok bool) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, outcome(ok)).Inc()
}

// ObserveCommand records one handled command
func (m *Metrics) ObserveCommand(command, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, result).Inc()
}

// ObserveDeliveryFallback records a video re-sent as a document
func (m *Metrics) ObserveDeliveryFallback() {
	if m == nil {
		return
	}
	m.deliveryFallbacks.Inc()
}

// ObserveGeolocation records one geolocation lookup
func (m *Metrics) ObserveGeolocation(provider string, ok bool) {
	if m == nil {
		return
	}
	m.geoLookups.WithLabelValues(provider, outcome(ok)).Inc()
}

// ObservePing records a measured round trip in milliseconds
func (m *Metrics) ObservePing(ms int64) {
	if m == nil {
		return
	}
	m.pingLatency.Observe(float64(ms) / 1000)
}
