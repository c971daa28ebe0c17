package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one service instance on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	bookingsCreated  prometheus.Counter
	checkouts        *prometheus.CounterVec
	overstayHours    *prometheus.CounterVec
	kardexMovements  *prometheus.CounterVec
	paymentsReceived prometheus.Counter
}

func New(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created.",
			ConstLabels: constLabels,
		}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_checkouts_total",
			Help:        "Completed checkouts by finish type.",
			ConstLabels: constLabels,
		}, []string{"finish_type"}),
		overstayHours: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_overstay_hours_total",
			Help:        "Extra hours billed, by the operation that billed them.",
			ConstLabels: constLabels,
		}, []string{"source"}),
		kardexMovements: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "kardex_movements_total",
			Help:        "Stock movements appended to the kardex.",
			ConstLabels: constLabels,
		}, []string{"movement_type", "movement_category"}),
		paymentsReceived: f.NewCounter(prometheus.CounterOpts{
			Name:        "payments_received_total",
			Help:        "Payments registered against bookings.",
			ConstLabels: constLabels,
		}),
	}
}

// WatchDB exports connection pool statistics of db.
func (m *Metrics) WatchDB(db *sql.DB, dbName string) {
	if m == nil || db == nil {
		return
	}
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, dbName))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *Metrics) Checkout(finishType string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(finishType).Inc()
}

func (m *Metrics) OverstayBilled(source string, hours int) {
	if m == nil || hours <= 0 {
		return
	}
	m.overstayHours.WithLabelValues(source).Add(float64(hours))
}

func (m *Metrics) KardexMovement(movementType, category string) {
	if m == nil {
		return
	}
	m.kardexMovements.WithLabelValues(movementType, category).Inc()
}

func (m *Metrics) PaymentsReceived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.paymentsReceived.Add(float64(n))
}
