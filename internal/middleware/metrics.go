package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP-метрики: общее число запросов, латентность и ошибки по маршрутам.
var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total Requests",
	}, []string{"method", "endpoint"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Request Latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	errorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_request_errors_total",
		Help: "Total Errors",
	}, []string{"endpoint", "status"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// endpoint — шаблон маршрута chi, чтобы id не раздували кардинальность меток.
func endpoint(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

// WithMetrics считает запросы, латентность и ответы 5xx.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ep := endpoint(r)
		requestCount.WithLabelValues(r.Method, ep).Inc()
		requestLatency.WithLabelValues(ep).Observe(time.Since(start).Seconds())
		if rec.status >= http.StatusInternalServerError {
			errorCount.WithLabelValues(ep, strconv.Itoa(rec.status)).Inc()
		}
	})
}
