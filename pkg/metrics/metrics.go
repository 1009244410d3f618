package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface plus the
// booking domain counters.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	bookingsCreated prometheus.Counter
	bookingsExpired prometheus.Counter
	slotTransitions *prometheus.CounterVec
}

// New registers the collectors on a fresh registry so tests can construct
// multiple instances without duplicate-registration panics.
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by method, route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "HTTP requests currently being served.",
			ConstLabels: labels,
		}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Reservations accepted.",
			ConstLabels: labels,
		}),
		bookingsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_expired_total",
			Help:        "Reservations expired as no-shows by the sweeper.",
			ConstLabels: labels,
		}),
		slotTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_transitions_total",
			Help:        "Slot status transitions by target status.",
			ConstLabels: labels,
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.bookingsCreated,
		m.bookingsExpired,
		m.slotTransitions,
	)

	return m
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts, latency and in-flight gauge per route.
// The route label uses the gin template path to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestsInFlight.Inc()

		c.Next()

		m.requestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) BookingCreated() {
	m.bookingsCreated.Inc()
}

func (m *Metrics) BookingsExpired(n int) {
	m.bookingsExpired.Add(float64(n))
}

func (m *Metrics) SlotTransition(status string) {
	m.slotTransitions.WithLabelValues(status).Inc()
}
