package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for booking flows.
type BookingMetrics struct {
	createdTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	wsConnections   prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shecare",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total bookings accepted by the public endpoint",
		}, []string{"provider_type"}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shecare",
			Subsystem: "bookings",
			Name:      "status_transitions_total",
			Help:      "Status transition attempts by outcome",
		}, []string{"from", "to", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shecare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shecare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shecare",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open admin websocket connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.transitionTotal, m.httpRequests, m.httpLatency, m.wsConnections)
	return m
}

func (m *BookingMetrics) ObserveCreated(providerType string) {
	if m == nil {
		return
	}
	if providerType == "" {
		providerType = "unknown"
	}
	m.createdTotal.WithLabelValues(providerType).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(from, to, result).Inc()
}

func (m *BookingMetrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *BookingMetrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.wsConnections.Set(float64(n))
}
