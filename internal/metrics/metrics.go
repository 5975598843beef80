// Package metrics defines and registers all custom Prometheus metrics for the
// e-library backend. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; expose them by mounting promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "elibrary"

// ── Circulation metrics ───────────────────────────────────────────────────────

// IssuesTotal counts successfully issued books.
var IssuesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_total",
		Help:      "Total number of books issued.",
	},
)

// ReturnsTotal counts successfully returned books.
var ReturnsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_total",
		Help:      "Total number of books returned.",
	},
)

// IssueConflictsTotal counts issue attempts that lost the per-book race and
// were rejected with a conflict.
var IssueConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issue_conflicts_total",
		Help:      "Total number of issue attempts rejected because the book was already issued.",
	},
)

// ── Reconciliation metrics ────────────────────────────────────────────────────

// AvailabilitySyncsTotal counts availability reconciliation passes.
var AvailabilitySyncsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_syncs_total",
		Help:      "Total number of book availability reconciliation passes.",
	},
)

// AvailabilityChangesTotal counts availability flags corrected by the sync.
var AvailabilityChangesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_changes_total",
		Help:      "Total number of book availability flags corrected by reconciliation.",
	},
)

// OverdueSweepDuration measures how long a full overdue sweep takes.
var OverdueSweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "overdue_sweep_duration_seconds",
		Help:      "Duration of the overdue sweep across all users.",
		Buckets:   prometheus.DefBuckets,
	},
)
