// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package metrics provides Prometheus instrumentation for versiongate.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versiongate_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "versiongate_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "versiongate_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Access gate metrics
	GateDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versiongate_gate_decisions_total",
			Help: "Total number of access gate decisions",
		},
		[]string{"outcome", "factor"}, // outcome: authorized/denied; factor: header/address/none
	)

	// Version collection metrics
	CollectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "versiongate_collect_duration_seconds",
			Help:    "Duration of version report collection in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RegistrySkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versiongate_registry_skips_total",
			Help: "Total number of skipped registry lookups",
		},
		[]string{"reason"}, // "unavailable", "path_not_found", "query_error"
	)

	// Upstream directory metrics
	DirectoryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versiongate_directory_lookups_total",
			Help: "Total number of upstream directory version lookups",
		},
		[]string{"source", "result"}, // source: wordpress/envato; result: hit/miss/error
	)
)

// RecordRequest records metrics for a completed HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		ActiveRequests.Inc()
	} else {
		ActiveRequests.Dec()
	}
}

// RecordGateDecision records an access gate decision.
func RecordGateDecision(authorized bool, factor string) {
	outcome := "denied"
	if authorized {
		outcome = "authorized"
	}
	if factor == "" {
		factor = "none"
	}
	GateDecisionsTotal.WithLabelValues(outcome, factor).Inc()
}

// RecordRegistrySkip records a skipped registry lookup.
func RecordRegistrySkip(reason string) {
	RegistrySkipsTotal.WithLabelValues(reason).Inc()
}

// RecordDirectoryLookup records an upstream directory lookup result.
func RecordDirectoryLookup(source, result string) {
	DirectoryLookupsTotal.WithLabelValues(source, result).Inc()
}
