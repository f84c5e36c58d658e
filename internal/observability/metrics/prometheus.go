// Package metrics provides Prometheus metrics for the pharmacy API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	MedicinesCreated    prometheus.Counter
	MedicinesUpdated    prometheus.Counter
	MedicinesDeleted    prometheus.Counter
	MedicineSearches    prometheus.Counter
	PrescriptionsServed prometheus.Counter
	StorageBackend      *prometheus.GaugeVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        prometheus.Histogram
}

// New creates and registers all metrics
func New() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MedicinesCreated,
		m.MedicinesUpdated,
		m.MedicinesDeleted,
		m.MedicineSearches,
		m.PrescriptionsServed,
		m.StorageBackend,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// NewNop creates metrics that are never registered or scraped. Handlers use
// it when no metrics are supplied.
func NewNop() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MedicinesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medicines_created_total",
			Help: "Total medicines created",
		}),
		MedicinesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medicines_updated_total",
			Help: "Total medicine updates",
		}),
		MedicinesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medicines_deleted_total",
			Help: "Total medicines deleted",
		}),
		MedicineSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medicine_searches_total",
			Help: "Total medicine search queries",
		}),
		PrescriptionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prescription_status_updates_total",
			Help: "Total prescription status updates",
		}),
		StorageBackend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storage_backend_bound",
			Help: "Which storage backend the process bound at startup (1=bound)",
		}, []string{"backend"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method and status",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

// Middleware records request counts and latency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
