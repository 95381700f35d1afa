// Package metrics provides Prometheus metrics for the reconciliation engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelengine_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "labelengine_run_duration_seconds",
			Help:    "Time taken by a reconciliation run",
			Buckets: prometheus.DefBuckets,
		},
	)

	PagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelengine_pages_processed_total",
			Help: "Pages processed, by resolution outcome",
		},
		[]string{"outcome"},
	)

	RowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labelengine_order_rows_dropped_total",
			Help: "Order export rows dropped for missing keys",
		},
	)

	RoundRobinAssignments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labelengine_round_robin_assignments_total",
			Help: "Ambiguous order keys resolved by round-robin fallback",
		},
	)

	DuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labelengine_duplicate_pages_skipped_total",
			Help: "Pages skipped by duplicate-order removal",
		},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labelengine_persistence_failures_total",
			Help: "Best-effort persistence failures after a computed run",
		},
		[]string{"target"},
	)
)

// RecordPages records resolution outcomes for one run.
func RecordPages(resolved, unresolved int) {
	PagesProcessed.WithLabelValues("resolved").Add(float64(resolved))
	PagesProcessed.WithLabelValues("unresolved").Add(float64(unresolved))
}

// RecordRun records a completed run with its duration.
func RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}
