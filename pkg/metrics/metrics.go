// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "engage"

var (
	// HTTPRequestDuration observes handler latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// ImportsTotal counts attendance imports by outcome (ok, dry_run, rejected, failed).
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "imports_total",
		Help:      "Attendance imports by outcome.",
	}, []string{"outcome"})

	// ImportRowsTotal counts CSV rows by what happened to them.
	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Attendance CSV rows by result (imported, skipped, duplicate).",
	}, []string{"result"})

	// AnalyticsCacheTotal counts analytics cache lookups (hit, miss, error).
	AnalyticsCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_cache_total",
		Help:      "Analytics payload cache lookups by result.",
	}, []string{"result"})
)

// Import outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDryRun   = "dry_run"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
