// Package metrics exposes Prometheus instrumentation for the scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuditsTotal counts completed audits by outcome ("success" or "invalid_input").
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_audits_total",
			Help: "Number of metadata audits performed",
		},
		[]string{"status"},
	)

	// AuditDuration observes end-to-end audit latency in seconds.
	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aso_audit_duration_seconds",
			Help:    "End-to-end audit pipeline latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RuleSetCacheEvents counts ruleset cache activity ("hit", "miss", "stale_hit", "invalidate").
	RuleSetCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_ruleset_cache_events_total",
			Help: "RuleSet cache hits, misses and invalidations",
		},
		[]string{"event"},
	)

	// RuleSetMergeDuration observes merge pipeline latency in seconds.
	RuleSetMergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aso_ruleset_merge_duration_seconds",
			Help:    "Layered rule set merge latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
		},
	)

	// RuleStoreErrors counts rule store fetch failures by operation.
	RuleStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_rule_store_errors_total",
			Help: "Rule store fetch failures",
		},
		[]string{"operation"},
	)

	// FallbackActivations counts degraded-mode activations by kind
	// ("intent_patterns", "stale_cache", "base_only").
	FallbackActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_fallback_activations_total",
			Help: "Degraded-mode activations in the scoring engine",
		},
		[]string{"kind"},
	)

	// LeakWarnings counts cross-vertical leak warnings by vertical.
	LeakWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_ruleset_leak_warnings_total",
			Help: "Cross-vertical vocabulary leaks detected during merge",
		},
		[]string{"vertical"},
	)

	// OverrideClamps counts out-of-bounds override values clamped during merge.
	OverrideClamps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aso_override_clamps_total",
			Help: "Override values clamped to their allowed bounds",
		},
		[]string{"field"},
	)
)

// RecordAudit records one completed audit with its latency.
func RecordAudit(status string, seconds float64) {
	AuditsTotal.WithLabelValues(status).Inc()
	AuditDuration.Observe(seconds)
}
