package elements

import (
	"github.com/asolytics/metascore/pkg/combos"
	"github.com/asolytics/metascore/pkg/ruleset"
)

// EvalContext carries everything a rule evaluator may inspect. Title is the
// sibling title element, set for subtitle rules that compare against it.
type EvalContext struct {
	Element *Element
	Title   *Element
	Combos  []combos.Record
	Rules   *ruleset.MergedRuleSet
}

// Evidence explains how a rule arrived at its score.
type Evidence struct {
	MatchedTokens []string           `json:"matched_tokens,omitempty"`
	Thresholds    map[string]float64 `json:"thresholds,omitempty"`

	// Metrics holds the measured values the rule scored against, keyed by
	// metric name. Recommendation templates interpolate from here.
	Metrics map[string]float64 `json:"metrics,omitempty"`

	Detail string `json:"detail,omitempty"`
}

// RuleResult is one rule's verdict for one element.
type RuleResult struct {
	RuleID   string   `json:"rule_id"`
	Category string   `json:"category"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Passed   bool     `json:"passed"`
	Evidence Evidence `json:"evidence"`
}

// EvaluatorFunc scores one element against one rule.
type EvaluatorFunc func(ctx EvalContext) RuleResult

// RuleDefinition is one entry of the static rule catalog. The catalog is
// built once at process start and never mutated; per-scope overrides adjust
// thresholds through the merged rule set overlay, not the catalog.
type RuleDefinition struct {
	ID        string
	Category  string
	Weight    float64
	AppliesTo []Kind
	Evaluate  EvaluatorFunc
}

func (d RuleDefinition) appliesTo(kind Kind) bool {
	for _, k := range d.AppliesTo {
		if k == kind {
			return true
		}
	}
	return false
}

// catalog is the fixed rule catalog, in evaluation order.
var catalog = []RuleDefinition{
	{
		ID:        "character_usage",
		Category:  "structure",
		Weight:    0.25,
		AppliesTo: []Kind{KindTitle, KindSubtitle, KindDescription},
		Evaluate:  evalCharacterUsage,
	},
	{
		ID:        "unique_keywords",
		Category:  "keyword",
		Weight:    0.30,
		AppliesTo: []Kind{KindTitle, KindSubtitle, KindDescription},
		Evaluate:  evalUniqueKeywords,
	},
	{
		ID:        "combo_coverage",
		Category:  "combo",
		Weight:    0.25,
		AppliesTo: []Kind{KindTitle, KindSubtitle, KindDescription},
		Evaluate:  evalComboCoverage,
	},
	{
		ID:        "noise_penalty",
		Category:  "quality",
		Weight:    0.20,
		AppliesTo: []Kind{KindTitle, KindSubtitle, KindDescription},
		Evaluate:  evalNoisePenalty,
	},
	{
		ID:        "subtitle_complementarity",
		Category:  "keyword",
		Weight:    0.25,
		AppliesTo: []Kind{KindSubtitle},
		Evaluate:  evalSubtitleComplementarity,
	},
	{
		ID:        "subtitle_incremental_value",
		Category:  "keyword",
		Weight:    0.25,
		AppliesTo: []Kind{KindSubtitle},
		Evaluate:  evalSubtitleIncrementalValue,
	},
	{
		ID:        "description_keyword_depth",
		Category:  "keyword",
		Weight:    0.25,
		AppliesTo: []Kind{KindDescription},
		Evaluate:  evalDescriptionKeywordDepth,
	},
	{
		ID:        "readability",
		Category:  "quality",
		Weight:    0.20,
		AppliesTo: []Kind{KindDescription},
		Evaluate:  evalReadability,
	},
	{
		ID:        "hook_strength",
		Category:  "conversion",
		Weight:    0.20,
		AppliesTo: []Kind{KindDescription},
		Evaluate:  evalHookStrength,
	},
}

// Catalog returns the static rule catalog.
func Catalog() []RuleDefinition {
	return catalog
}
