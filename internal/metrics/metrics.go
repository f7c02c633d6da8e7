// Package metrics pre-defines the Prometheus instrumentation for the sale
// recorder: request-level HTTP metrics plus sale outcome counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SalesTotal counts RecordSale outcomes: recorded, insufficient_stock,
	// duplicate, not_found, aborted, invalid, error.
	SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salerecorder",
		Name:      "sales_total",
		Help:      "Total RecordSale invocations by outcome.",
	}, []string{"outcome"})

	// SaleDuration tracks the wall-clock time of the whole RecordSale call,
	// admission gate included.
	SaleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "salerecorder",
		Name:      "sale_duration_seconds",
		Help:      "Duration of RecordSale calls in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "salerecorder",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salerecorder",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records duration and count per route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.status)
		requestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
