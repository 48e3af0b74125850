// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for vault operations.
// It exposes operation counters, authentication prompt outcomes, latency
// histograms and record gauges for monitoring vault health.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all vault metrics
	Namespace = "biovault"

	// Label names
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelOutcome    = "outcome"
	LabelErrorKind  = "error_kind"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpCheckStatus  = "check_status"
	OpAuthenticate = "authenticate"
	OpHasData      = "has_data"
	OpSetData      = "set_data"
	OpGetData      = "get_data"
	OpRemoveData   = "remove_data"
	OpListData     = "list_data"
)

var (
	// OperationsTotal tracks the total number of vault operations by type
	// and status. Use RecordOperation to increment this counter.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of vault operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of vault operations in seconds.
	// Buckets stretch to cover operations that wait on a user prompt.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of vault operations in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30, 60},
		},
		[]string{LabelOperation},
	)

	// PromptsTotal tracks authentication prompt outcomes.
	PromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "prompts_total",
			Help:      "Total number of authentication prompts by outcome",
		},
		[]string{LabelOutcome},
	)

	// ErrorsTotal tracks errors by operation and canonical error kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error kind",
		},
		[]string{LabelOperation, LabelErrorKind},
	)

	// RecordsTotal tracks the number of stored secret records per domain.
	RecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "records_total",
			Help:      "Number of stored secret records per domain",
		},
		[]string{"domain"},
	)

	// HTTPRequestsTotal tracks HTTP requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks HTTP request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records a vault operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	data, err := vault.GetData(ctx, domain, name, event)
//	if err != nil {
//	    RecordOperation(OpGetData, StatusError, time.Since(start).Seconds())
//	} else {
//	    RecordOperation(OpGetData, StatusSuccess, time.Since(start).Seconds())
//	}
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordPrompt records the outcome of an authentication prompt.
// Outcome values are "approved", "rejected" and "errored".
func RecordPrompt(outcome string) {
	if !enabled.Load() {
		return
	}
	PromptsTotal.WithLabelValues(outcome).Inc()
}

// RecordError records an error event by operation and canonical error kind
// (e.g. "userCancel", "biometryLockout", "decryptionFailed").
func RecordError(operation, errorKind string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorKind).Inc()
}

// SetRecordsTotal sets the stored record count for a domain.
func SetRecordsTotal(domain string, count float64) {
	if !enabled.Load() {
		return
	}
	RecordsTotal.WithLabelValues(domain).Set(count)
}

// RecordHTTPRequest records an HTTP request with its duration and status.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !enabled.Load() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
