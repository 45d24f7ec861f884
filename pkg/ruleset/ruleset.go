// Package ruleset builds the merged rule configuration an audit runs
// against. Override documents from the rule store are layered on top of the
// base configuration in strict precedence order (base, vertical, market,
// client), the result is checked for cross-vertical vocabulary leaks, and
// snapshots are cached per scope with a TTL.
package ruleset

import (
	"fmt"
	"time"

	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// Source records how a merged rule set was produced.
type Source string

const (
	// SourceFresh means the snapshot was built from live store documents.
	SourceFresh Source = "fresh"
	// SourceStaleCache means the store was unreachable and an expired cached
	// snapshot was served instead.
	SourceStaleCache Source = "stale_cache"
	// SourceBaseOnly means the store was unreachable with nothing cached, so
	// only the base layer is active.
	SourceBaseOnly Source = "base_only"
)

// Scope identifies one inheritance chain: vertical, market and client/app.
// Empty components simply contribute no override layer.
type Scope struct {
	Vertical string `json:"vertical"`
	Market   string `json:"market"`
	Client   string `json:"client"`
}

// Key returns the cache key for the scope tuple.
func (s Scope) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.Vertical, s.Market, s.Client)
}

// VerticalScope returns the rule store address of the vertical layer.
func (s Scope) VerticalScope() string { return "vertical:" + s.Vertical }

// MarketScope returns the rule store address of the market layer.
func (s Scope) MarketScope() string { return "market:" + s.Market }

// ClientScope returns the rule store address of the client/app layer.
func (s Scope) ClientScope() string { return "client:" + s.Client }

// MergedRuleSet is the immutable merged snapshot an audit runs against.
// It is owned by the cache; consumers must treat it as read-only.
type MergedRuleSet struct {
	Scope Scope `json:"scope"`

	TokenRelevance      map[string]float64 `json:"token_relevance"`
	KPIMultipliers      map[string]float64 `json:"kpi_multipliers"`
	Thresholds          map[string]float64 `json:"thresholds"`
	DiscoveryThresholds map[string]float64 `json:"discovery_thresholds"`
	Templates           map[string]string  `json:"templates"`

	// IntentPatterns is nil when neither the base layer nor any override
	// supplied patterns; consumers then use the in-process fallback set.
	IntentPatterns []intent.Pattern `json:"intent_patterns,omitempty"`

	// Warnings collects non-fatal merge diagnostics: leak detections and
	// clamped out-of-bounds overrides.
	Warnings []string `json:"warnings,omitempty"`

	// Source records the provenance of this snapshot. Anything other than
	// SourceFresh means the result was produced in a degraded mode.
	Source  Source    `json:"source"`
	BuiltAt time.Time `json:"built_at"`
}

// Degraded reports whether the snapshot was built without live store data.
func (rs *MergedRuleSet) Degraded() bool {
	return rs.Source != SourceFresh
}

// RelevanceOf returns the relevance of a token in [0,1]. Tokens without an
// explicit override fall back to a fixed heuristic: noise tokens are nearly
// worthless, very short tokens are weak, everything else is neutral.
func (rs *MergedRuleSet) RelevanceOf(token string) float64 {
	if rel, ok := rs.TokenRelevance[token]; ok {
		return rel
	}
	switch {
	case textanalysis.IsNoise(token):
		return 0.1
	case len(token) < 3:
		return 0.3
	default:
		return 0.5
	}
}

// Threshold returns the resolved threshold for a dotted key, or the given
// default when the key is unknown.
func (rs *MergedRuleSet) Threshold(key string, def float64) float64 {
	if v, ok := rs.Thresholds[key]; ok {
		return v
	}
	return def
}

// DiscoveryThreshold returns the resolved discovery threshold for a key.
func (rs *MergedRuleSet) DiscoveryThreshold(key string, def float64) float64 {
	if v, ok := rs.DiscoveryThresholds[key]; ok {
		return v
	}
	return def
}

// MultiplierFor returns the resolved KPI weight multiplier, 1.0 when none is
// configured. Stored values are already clamped to [0.5, 2.0] by the merge.
func (rs *MergedRuleSet) MultiplierFor(kpiID string) float64 {
	if m, ok := rs.KPIMultipliers[kpiID]; ok {
		return m
	}
	return 1.0
}

// Template returns the recommendation template for a rule or KPI id.
func (rs *MergedRuleSet) Template(id string) (string, bool) {
	t, ok := rs.Templates[id]
	return t, ok
}
