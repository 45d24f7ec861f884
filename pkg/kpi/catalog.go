package kpi

import (
	"github.com/asolytics/metascore/pkg/ruleset"
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// Family names for the KPI catalog. The configured family weights are keyed
// by these names.
const (
	FamilyKeyword   = "keyword"
	FamilyCombo     = "combo"
	FamilyIntent    = "intent"
	FamilyStructure = "structure"
)

// ComputeFunc derives one KPI's raw value in [0, 100] from the primitives.
type ComputeFunc func(p Primitives, rules *ruleset.MergedRuleSet) float64

// Definition is one entry of the static KPI catalog. Weight is the KPI's
// share within its family; per-scope multipliers are resolved at evaluation
// time, never stored here.
type Definition struct {
	ID      string
	Family  string
	Weight  float64
	Compute ComputeFunc
}

var catalog = []Definition{
	{ID: "keyword_breadth", Family: FamilyKeyword, Weight: 0.5, Compute: computeKeywordBreadth},
	{ID: "keyword_relevance", Family: FamilyKeyword, Weight: 0.5, Compute: computeKeywordRelevance},
	{ID: "combo_density", Family: FamilyCombo, Weight: 0.5, Compute: computeComboDensity},
	{ID: "combo_depth", Family: FamilyCombo, Weight: 0.5, Compute: computeComboDepth},
	{ID: "intent_coverage", Family: FamilyIntent, Weight: 0.5, Compute: computeIntentCoverage},
	{ID: "intent_spread", Family: FamilyIntent, Weight: 0.5, Compute: computeIntentSpread},
	{ID: "char_utilization", Family: FamilyStructure, Weight: 0.5, Compute: computeCharUtilization},
	{ID: "noise_discipline", Family: FamilyStructure, Weight: 0.5, Compute: computeNoiseDiscipline},
}

// Catalog returns the static KPI catalog.
func Catalog() []Definition {
	return catalog
}

// computeKeywordBreadth rewards the count of unique non-noise tokens.
func computeKeywordBreadth(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	n := len(uniqueSignalTokens(p.Tokens))
	v := float64(n) * 10
	if v > 100 {
		v = 100
	}
	return v
}

// computeKeywordRelevance averages the merged relevance of the unique
// non-noise tokens.
func computeKeywordRelevance(p Primitives, rules *ruleset.MergedRuleSet) float64 {
	tokens := uniqueSignalTokens(p.Tokens)
	if len(tokens) == 0 {
		return 0
	}
	sum := 0.0
	for _, tok := range tokens {
		sum += rules.RelevanceOf(tok)
	}
	return sum / float64(len(tokens)) * 100
}

// computeComboDensity rewards the count of deduplicated combos.
func computeComboDensity(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	v := float64(len(p.Combos)) * 15
	if v > 100 {
		v = 100
	}
	return v
}

// computeComboDepth measures the share of combos spanning three or more
// tokens. Longer phrases indicate long-tail coverage.
func computeComboDepth(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	if len(p.Combos) == 0 {
		return 0
	}
	deep := 0
	for _, rec := range p.Combos {
		if len(rec.Tokens) >= 3 {
			deep++
		}
	}
	return float64(deep) / float64(len(p.Combos)) * 100
}

// computeIntentCoverage is the share of tokens matching any intent pattern.
func computeIntentCoverage(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	if p.Intent.Total == 0 {
		return 0
	}
	return float64(p.Intent.Matched) / float64(p.Intent.Total) * 100
}

// computeIntentSpread measures how many of the four intent categories the
// text reaches.
func computeIntentSpread(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	hit := 0
	for _, count := range p.Intent.Counts {
		if count > 0 {
			hit++
		}
	}
	return float64(hit) / 4 * 100
}

// computeCharUtilization averages the title and subtitle limit usage. An
// overflowing element contributes zero, mirroring the element rule.
func computeCharUtilization(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	return (usageScore(p.TitleUsagePct) + usageScore(p.SubtitleUsagePct)) / 2
}

func usageScore(pct float64) float64 {
	if pct > 100 {
		return 0
	}
	return pct
}

// computeNoiseDiscipline is the inverse of the overall noise ratio.
func computeNoiseDiscipline(p Primitives, _ *ruleset.MergedRuleSet) float64 {
	return (1 - p.NoiseRatio) * 100
}

// uniqueSignalTokens deduplicates tokens and drops noise, preserving order.
func uniqueSignalTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		if seen[tok] || textanalysis.IsNoise(tok) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
