// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package metrics exposes Prometheus metrics for the Crumbcoat server.
// Metrics are registered with the default registry via promauto and served
// on /metrics by the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crumbcoat_http_requests_total",
			Help: "Total HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crumbcoat_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crumbcoat_http_active_requests",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crumbcoat_login_attempts_total",
			Help: "Login attempts by result (success, invalid, throttled).",
		},
		[]string{"result"},
	)

	handshakesIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crumbcoat_handshakes_issued_total",
			Help: "Handshake tokens issued.",
		},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crumbcoat_uploads_total",
			Help: "Image uploads by result (success, rejected, error).",
		},
		[]string{"result"},
	)

	contentWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crumbcoat_content_writes_total",
			Help: "Content document writes by document type.",
		},
		[]string{"type"},
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		httpActiveRequests.Inc()
	} else {
		httpActiveRequests.Dec()
	}
}

// RecordLoginAttempt records a login attempt outcome.
func RecordLoginAttempt(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordHandshakeIssued records an issued handshake token.
func RecordHandshakeIssued() {
	handshakesIssuedTotal.Inc()
}

// RecordUpload records an image upload outcome.
func RecordUpload(result string) {
	uploadsTotal.WithLabelValues(result).Inc()
}

// RecordContentWrite records a content document write.
func RecordContentWrite(docType string) {
	contentWritesTotal.WithLabelValues(docType).Inc()
}
