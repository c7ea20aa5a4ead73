package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "surfaura"

// Metrics owns a private registry so tests and multiple instances never collide
// on the global default one. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	bookingsSubmitted  prometheus.Counter
	validationFailures prometheus.Counter
	storeErrors        *prometheus.CounterVec
	eventsPublished    *prometheus.CounterVec
	panicsRecovered    prometheus.Counter
	rateLimited        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		bookingsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_submitted_total",
			Help:      "Count of bookings stored successfully.",
		}),
		validationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_validation_failures_total",
			Help:      "Count of booking submissions rejected by validation.",
		}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Count of document store failures by operation.",
		}, []string{"operation"}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Count of booking events published by outcome.",
		}, []string{"status"}),
		panicsRecovered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_recovered_total",
			Help:      "Count of HTTP handlers recovered from panic.",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Count of booking submissions rejected by the rate limiter.",
		}),
	}
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
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) IncBookingSubmitted() {
	if m == nil {
		return
	}
	m.bookingsSubmitted.Inc()
}

func (m *Metrics) IncValidationFailure() {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
}

func (m *Metrics) IncStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncEventPublished(success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "failed"
	}
	m.eventsPublished.WithLabelValues(status).Inc()
}

func (m *Metrics) IncPanicRecovered() {
	if m == nil {
		return
	}
	m.panicsRecovered.Inc()
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) RegisterRoutes(router *httprouter.Router) {
	if m == nil {
		return
	}
	router.Handler(http.MethodGet, "/metrics", m.Handler())
}
