package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetrics_Counters(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())

	m.ObserveCreated("clinic")
	m.ObserveCreated("")
	m.ObserveTransition("pending", "confirmed", "ok")
	m.ObserveTransition("pending", "confirmed", "ok")
	m.ObserveHTTP("GET", "/health", "200", 0.01)
	m.SetConnections(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.createdTotal.WithLabelValues("clinic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.createdTotal.WithLabelValues("unknown")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitionTotal.WithLabelValues("pending", "confirmed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.wsConnections))
}

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.ObserveCreated("clinic")
		m.ObserveTransition("a", "b", "c")
		m.ObserveHTTP("GET", "/", "200", 1)
		m.SetConnections(1)
	})
}
