// Package metrics provides Prometheus metrics collection for the API.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global metrics. atomic.Pointer gives lock-free nil checks on the hot path
// so recording is safe before Init (it becomes a no-op).
var (
	requestsTotal     atomic.Pointer[prometheus.CounterVec]
	requestDuration   atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal atomic.Pointer[prometheus.CounterVec]
	reportResolutions atomic.Pointer[prometheus.CounterVec]
)

// Init registers all metrics with the provided registry.
// Call once at application startup.
func Init(reg prometheus.Registerer, version string) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturia",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the API",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facturia",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturia",
			Subsystem: "api",
			Name:      "auth_failures_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	reportResolutionsVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facturia",
			Subsystem: "api",
			Name:      "report_resolutions_total",
			Help:      "Report token redemption attempts by outcome",
		},
		[]string{"outcome"}, // ok, invalid, expired, error
	)
	if err := reg.Register(reportResolutionsVec); err != nil {
		return fmt.Errorf("failed to register reportResolutions: %w", err)
	}

	infoGaugeVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "facturia",
			Subsystem: "api",
			Name:      "info",
			Help:      "API version and build information",
		},
		[]string{"version"},
	)
	if err := reg.Register(infoGaugeVec); err != nil {
		return fmt.Errorf("failed to register infoGauge: %w", err)
	}
	infoGaugeVec.WithLabelValues(version).Set(1)

	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	reportResolutions.Store(reportResolutionsVec)

	return nil
}

// RecordRequest increments the requests counter.
// The path should be normalized (e.g., "/api/clients/:id").
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records request latency in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter.
// Common reasons: "missing_token", "invalid_session", "bad_credentials".
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordReportResolution increments the report redemption counter.
// Outcomes: "ok", "invalid", "expired", "error".
func RecordReportResolution(outcome string) {
	if counter := reportResolutions.Load(); counter != nil {
		counter.WithLabelValues(outcome).Inc()
	}
}

// Handler returns the HTTP handler serving Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
