package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the collectors exported at /metrics.
type Registry struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cargoTransitions *prometheus.CounterVec
	smsDeliveries    *prometheus.CounterVec
}

// NewRegistry builds the process registry with the platform collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests partitioned by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cargoTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cargo_transitions_total",
			Help: "Cargo status transitions partitioned by target status.",
		}, []string{"to_status"}),
		smsDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sms_deliveries_total",
			Help: "SMS delivery attempts partitioned by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler returns the /metrics HTTP handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveCargoTransition records a committed lifecycle transition.
func (r *Registry) ObserveCargoTransition(toStatus string) {
	r.cargoTransitions.WithLabelValues(toStatus).Inc()
}

// ObserveSMSDelivery records an SMS attempt outcome ("sent" or "failed").
func (r *Registry) ObserveSMSDelivery(outcome string) {
	r.smsDeliveries.WithLabelValues(outcome).Inc()
}

// Middleware instruments every request with count and latency collectors.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, req)

		route := chi.RouteContext(req.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(recorder.status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
