// Package metrics defines all custom Prometheus metrics for the matching
// coordinator. It is the single source of truth for metric names, labels,
// and help strings; metrics register themselves with the default registry
// at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matching"

// ── Pairing metrics ──────────────────────────────────────────────────────────

// MatchesCreatedTotal counts matches created by atomic pair creation.
var MatchesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_created_total",
		Help:      "Total number of matches created.",
	},
)

// PairConflictsTotal counts pair-creation attempts abandoned because the
// candidate was taken by a concurrent caller between scan and lock.
var PairConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pair_conflicts_total",
		Help:      "Total number of pair-creation conflicts detected under lock.",
	},
)

// QueueDepth tracks the current number of queued users.
var QueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of users waiting in the queue.",
	},
)

// ── Vote metrics ─────────────────────────────────────────────────────────────

// VotesSubmittedTotal counts accepted votes.
// Label:
//   - vote: "yes" or "pass"
var VotesSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_submitted_total",
		Help:      "Total number of votes accepted, by vote type.",
	},
	[]string{"vote"},
)

// MatchOutcomesTotal counts resolved matches.
// Label:
//   - outcome: "both_yes", "yes_pass", "yes_idle", "both_pass", "pass_idle", "both_idle"
var MatchOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_outcomes_total",
		Help:      "Total number of resolved matches, by outcome.",
	},
	[]string{"outcome"},
)

// ── Guardian sweep metrics ───────────────────────────────────────────────────

// SweepRunsTotal counts completed guardian sweeps.
var SweepRunsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_runs_total",
		Help:      "Total number of completed guardian sweeps.",
	},
)

// SweepEvictionsTotal counts users evicted for stale presence.
// Label:
//   - from: "queue" or "match"
var SweepEvictionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_evictions_total",
		Help:      "Total number of stale users evicted by the sweep, by origin.",
	},
	[]string{"from"},
)

// SweepDurationSeconds measures one full sweep end-to-end.
var SweepDurationSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a guardian sweep across all reconciliation steps.",
		Buckets:   prometheus.DefBuckets,
	},
)
