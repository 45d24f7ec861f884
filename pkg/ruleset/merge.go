package ruleset

import (
	"fmt"
	"sort"
	"time"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/observability/metrics"
	"github.com/asolytics/metascore/pkg/rulestore"
)

// Multiplier bounds for KPI weight overrides. Values outside the range are
// clamped at merge time, never rejected.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 2.0
)

// Threshold overrides are bounded relative to the base value so a scope can
// recalibrate a rule but not disable it.
const (
	minThresholdFactor = 0.5
	maxThresholdFactor = 2.0
)

// Merger applies override documents to the base layer. It is stateless and
// safe for concurrent use; each Merge call builds a fresh snapshot.
type Merger struct {
	base     config.BaseRuleSet
	detector *leakDetector
}

// NewMerger creates a merger over the configured base layer.
func NewMerger(cfg *config.EngineConfig) *Merger {
	return &Merger{
		base:     cfg.Base,
		detector: newLeakDetector(cfg.Base.VerticalMarkers),
	}
}

// Merge layers the given override documents onto the base configuration in
// slice order (lowest precedence first). Nil documents are skipped — a
// missing scope simply inherits its parent. The merge is pure and
// idempotent: the same inputs always produce the same snapshot apart from
// BuiltAt.
func (m *Merger) Merge(scope Scope, docs []*rulestore.OverrideDocument, source Source) *MergedRuleSet {
	start := time.Now()

	rs := &MergedRuleSet{
		Scope:               scope,
		TokenRelevance:      copyFloatMap(m.base.TokenRelevance),
		KPIMultipliers:      map[string]float64{},
		Thresholds:          copyFloatMap(m.base.Thresholds),
		DiscoveryThresholds: copyFloatMap(m.base.DiscoveryThresholds),
		Templates:           copyStringMap(m.base.Templates),
		IntentPatterns:      m.base.IntentPatterns,
		Source:              source,
		BuiltAt:             time.Now().UTC(),
	}

	// Base-layer multipliers are subject to the same bounds as overrides:
	// clamping happens where values are applied, not where they are declared.
	for _, id := range sortedKeys(m.base.KPIMultipliers) {
		rs.KPIMultipliers[id] = m.clampMultiplier(rs, "base", id, m.base.KPIMultipliers[id])
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		m.applyDocument(rs, doc)
	}

	m.detector.scan(rs)

	metrics.RuleSetMergeDuration.Observe(time.Since(start).Seconds())
	return rs
}

// applyDocument merges one override layer. Later layers win per field:
// token relevance union-merges with last-writer-wins per token, numeric
// values are pure overrides bounded at apply time, and list-valued sections
// (templates, intent patterns) replace the inherited value wholesale when
// present. Maps are walked in sorted key order so the warning list comes out
// identical across merges of identical inputs.
func (m *Merger) applyDocument(rs *MergedRuleSet, doc *rulestore.OverrideDocument) {
	for _, tok := range sortedKeys(doc.TokenRelevance) {
		rs.TokenRelevance[tok] = m.clampRelevance(rs, doc.Scope, tok, doc.TokenRelevance[tok])
	}

	for _, id := range sortedKeys(doc.KPIMultipliers) {
		rs.KPIMultipliers[id] = m.clampMultiplier(rs, doc.Scope, id, doc.KPIMultipliers[id])
	}

	for _, key := range sortedKeys(doc.Thresholds) {
		rs.Thresholds[key] = m.clampThreshold(rs, m.base.Thresholds, doc.Scope, key, doc.Thresholds[key])
	}
	for _, key := range sortedKeys(doc.DiscoveryThresholds) {
		rs.DiscoveryThresholds[key] = m.clampThreshold(rs, m.base.DiscoveryThresholds, doc.Scope, key, doc.DiscoveryThresholds[key])
	}

	if len(doc.Templates) > 0 {
		rs.Templates = copyStringMap(doc.Templates)
	}
	if len(doc.IntentPatterns) > 0 {
		rs.IntentPatterns = doc.IntentPatterns
	}
}

// clampMultiplier bounds a KPI multiplier to [MinMultiplier, MaxMultiplier],
// recording a warning when the override was out of range.
func (m *Merger) clampMultiplier(rs *MergedRuleSet, scope, id string, mult float64) float64 {
	clamped := mult
	if clamped < MinMultiplier {
		clamped = MinMultiplier
	}
	if clamped > MaxMultiplier {
		clamped = MaxMultiplier
	}
	if clamped != mult {
		metrics.OverrideClamps.WithLabelValues("kpi_multiplier").Inc()
		warn := fmt.Sprintf("kpi multiplier %q from %s out of bounds (%.2f), clamped to %.2f", id, scope, mult, clamped)
		rs.Warnings = append(rs.Warnings, warn)
		logging.Warnf("RuleSet merge: %s", warn)
	}
	return clamped
}

// clampRelevance bounds an override token relevance to [0,1], the same range
// the base layer is validated against, recording a warning when the override
// was out of range.
func (m *Merger) clampRelevance(rs *MergedRuleSet, scope, tok string, rel float64) float64 {
	clamped := rel
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 1 {
		clamped = 1
	}
	if clamped != rel {
		metrics.OverrideClamps.WithLabelValues("token_relevance").Inc()
		warn := fmt.Sprintf("token relevance %q from %s out of bounds (%.2f), clamped to %.2f", tok, scope, rel, clamped)
		rs.Warnings = append(rs.Warnings, warn)
		logging.Warnf("RuleSet merge: %s", warn)
	}
	return clamped
}

// clampThreshold bounds a threshold override relative to its base value in
// baseVals. A key with no base value is accepted as-is.
func (m *Merger) clampThreshold(rs *MergedRuleSet, baseVals map[string]float64, scope, key string, val float64) float64 {
	base, ok := baseVals[key]
	if !ok || base == 0 {
		return val
	}

	lo := base * minThresholdFactor
	hi := base * maxThresholdFactor
	clamped := val
	if clamped < lo {
		clamped = lo
	}
	if clamped > hi {
		clamped = hi
	}
	if clamped != val {
		metrics.OverrideClamps.WithLabelValues("threshold").Inc()
		warn := fmt.Sprintf("threshold %q from %s out of bounds (%.2f), clamped to %.2f", key, scope, val, clamped)
		rs.Warnings = append(rs.Warnings, warn)
		logging.Warnf("RuleSet merge: %s", warn)
	}
	return clamped
}

// sortedKeys returns the map's keys in sorted order. Clamp warnings are
// emitted while walking these maps, so iteration order must be stable for
// Merge to stay deterministic.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyFloatMap(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyStringMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
