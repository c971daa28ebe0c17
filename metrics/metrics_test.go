package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if want != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestMetrics_BusinessCounters(t *testing.T) {
	m := New("pms-test")

	m.BookingCreated()
	m.Checkout("on_time")
	m.Checkout("overtime")
	m.Checkout("overtime")
	m.OverstayBilled("checkout", 2)
	m.OverstayBilled("checkout", 0)
	m.KardexMovement("salida", "venta")
	m.PaymentsReceived(3)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, m, "bookings_created_total", nil))
	assert.Equal(t, 2.0, counterValue(t, m, "booking_checkouts_total", map[string]string{"finish_type": "overtime"}))
	assert.Equal(t, 2.0, counterValue(t, m, "booking_overstay_hours_total", map[string]string{"source": "checkout"}))
	assert.Equal(t, 1.0, counterValue(t, m, "kardex_movements_total", map[string]string{"movement_type": "salida", "movement_category": "venta"}))
	assert.Equal(t, 3.0, counterValue(t, m, "payments_received_total", map[string]string{"service": "pms-test"}))
	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", map[string]string{"route": "unmatched", "status": "404"}))
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := New("pms-test")
	m.BookingCreated()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body), `bookings_created_total{service="pms-test"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.Checkout("on_time")
		m.KardexMovement("entrada", "compra")
		m.ObserveRequest("GET", "/x", 200, time.Second)
		m.WatchDB(nil, "sqlite")
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
