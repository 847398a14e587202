// Package metrics provides Prometheus metrics for Wellspring — counters and
// histograms for the points ledger, badge engine, and recommendation scorer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Points Ledger ──────────────────────────────────────────────────────────

// PointsAwarded tracks points granted per activity type.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "points_awarded_total",
	Help:      "Total points awarded, by activity type.",
}, []string{"type"})

// AwardLatency tracks the duration of a full awardPoints cycle.
var AwardLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "wellspring",
	Name:      "award_latency_seconds",
	Help:      "Duration of an awardPoints call.",
	Buckets:   prometheus.DefBuckets,
})

// AwardConflicts tracks optimistic-concurrency retries on account writes.
var AwardConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "award_conflicts_total",
	Help:      "Total account write conflicts that triggered a retry.",
})

// TierChanges tracks tier promotions.
var TierChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "tier_changes_total",
	Help:      "Total tier changes, by new tier.",
}, []string{"tier"})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesUnlocked tracks badge unlocks.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked, by badge ID.",
}, []string{"badge"})

// ─── Recommendations ────────────────────────────────────────────────────────

// RecommendationsGenerated tracks recommendations returned to callers.
var RecommendationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "recommendations_generated_total",
	Help:      "Total recommendations returned.",
})

// CandidateFailures tracks non-fatal candidate generation failures.
var CandidateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wellspring",
	Name:      "candidate_failures_total",
	Help:      "Total skipped challenge candidates, by requested type.",
}, []string{"type"})

// RecommendationLatency tracks the duration of a full recommendation call,
// including the candidate fan-out.
var RecommendationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "wellspring",
	Name:      "recommendation_latency_seconds",
	Help:      "Duration of a generateRecommendations call.",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
})
