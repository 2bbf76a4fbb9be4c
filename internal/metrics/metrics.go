package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the collection of all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Standard metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	SeriesPoints  *prometheus.GaugeVec
}

// NewMetrics creates all metrics and registers them on reg. A nil registry
// gets a fresh one with the Go and process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "benchdash_fetch_total",
			Help: "Total number of source fetches",
		},
		[]string{"source", "status"},
	)

	m.FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "benchdash_fetch_duration_seconds",
			Help:    "Duration of source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.SeriesPoints = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "benchdash_series_points",
			Help: "Number of points in the last built series of a benchmark",
		},
		[]string{"benchmark"},
	)

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FetchTotal,
		m.FetchDuration,
		m.SeriesPoints,
	)

	return m
}

// Middleware for tracking HTTP requests
func (m *Metrics) RequestTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ObserveFetch records the outcome of one source fetch.
func (m *Metrics) ObserveFetch(source string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.WithLabelValues(source, status).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetSeriesPoints records the length of a built series.
func (m *Metrics) SetSeriesPoints(benchmark string, n int) {
	m.SeriesPoints.WithLabelValues(benchmark).Set(float64(n))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
