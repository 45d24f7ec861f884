package elements

import (
	"github.com/asolytics/metascore/pkg/combos"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/ruleset"
)

// ElementScoreResult is the weighted score of one element plus the per-rule
// breakdown that produced it.
type ElementScoreResult struct {
	Element Kind         `json:"element"`
	Score   float64      `json:"score"`
	Rules   []RuleResult `json:"rules"`
}

// Registry evaluates elements against the rule catalog.
type Registry struct {
	rules []RuleDefinition
}

// NewRegistry returns a registry over the static catalog.
func NewRegistry() *Registry {
	return &Registry{rules: Catalog()}
}

// Evaluate runs every applicable catalog rule for the element and folds the
// per-rule scores into a weight-normalized element score in [0, 100]. Empty
// elements still run the full rule pass so their zero scores carry evidence.
func (r *Registry) Evaluate(el *Element, title *Element, allCombos []combos.Record, rules *ruleset.MergedRuleSet) ElementScoreResult {
	ctx := EvalContext{
		Element: el,
		Title:   title,
		Combos:  combos.ForElement(allCombos, string(el.Kind)),
		Rules:   rules,
	}

	var results []RuleResult
	weightSum := 0.0
	weighted := 0.0
	for _, def := range r.rules {
		if !def.appliesTo(el.Kind) {
			continue
		}
		res := def.Evaluate(ctx)
		res.RuleID = def.ID
		res.Category = def.Category
		res.Weight = def.Weight
		res.Score = clampScore(res.Score)

		results = append(results, res)
		weightSum += def.Weight
		weighted += def.Weight * res.Score
	}

	score := 0.0
	if weightSum > 0 {
		score = clampScore(weighted / weightSum)
	}
	logging.Debugf("element %s scored %.1f over %d rules", el.Kind, score, len(results))

	return ElementScoreResult{
		Element: el.Kind,
		Score:   score,
		Rules:   results,
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
