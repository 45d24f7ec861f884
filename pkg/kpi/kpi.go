// Package kpi computes the normalized KPI vector from the shared audit
// primitives. Each KPI belongs to a family; family scores are weighted
// averages of the member KPIs, and the composite folds the families using
// the configured family weights, renormalized after per-scope adjustment.
package kpi

import (
	"github.com/asolytics/metascore/pkg/combos"
	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/ruleset"
)

// Primitives are the shared inputs every KPI formula reads. They are
// computed once per audit and passed by value.
type Primitives struct {
	// Tokens are the normalized tokens of all elements, in order.
	Tokens []string

	// Combos are the deduplicated phrase records across all elements.
	Combos []combos.Record

	// Intent is the token-level intent distribution.
	Intent intent.Distribution

	// Footprint is the combo-level discovery footprint.
	Footprint intent.Footprint

	// TitleUsagePct and SubtitleUsagePct are character-limit usage
	// percentages; values above 100 mean overflow.
	TitleUsagePct    float64
	SubtitleUsagePct float64

	// NoiseRatio is the share of noise tokens across all elements.
	NoiseRatio float64
}

// Value is one resolved KPI: the raw formula output, the scope multiplier
// applied to it, and the bounded final value.
type Value struct {
	ID         string  `json:"id"`
	Family     string  `json:"family"`
	Raw        float64 `json:"raw"`
	Multiplier float64 `json:"multiplier"`
	Value      float64 `json:"value"`

	// Degraded marks KPIs computed under intent-pattern fallback. Their
	// values are still reported but carry lower confidence.
	Degraded bool `json:"degraded,omitempty"`
}

// FamilyScore aggregates one family's KPIs.
type FamilyScore struct {
	Family   string  `json:"family"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Degraded bool    `json:"degraded,omitempty"`
}

// Result is the full KPI vector for one audit call.
type Result struct {
	Values       []Value       `json:"values"`
	Families     []FamilyScore `json:"families"`
	Composite    float64       `json:"composite"`
	FallbackMode bool          `json:"fallback_mode"`
}

// Engine evaluates the static KPI catalog against per-call primitives.
type Engine struct {
	defs     []Definition
	families []config.FamilyWeight
}

// NewEngine builds a KPI engine over the static catalog and the configured
// family weights.
func NewEngine(cfg *config.EngineConfig) *Engine {
	return &Engine{defs: Catalog(), families: cfg.Families}
}

// Evaluate computes every catalog KPI, applies the scope multipliers from
// the merged rule set and folds the results into family scores and a
// composite. Intent-family KPIs are flagged degraded in fallback mode.
func (e *Engine) Evaluate(p Primitives, rules *ruleset.MergedRuleSet) Result {
	values := make([]Value, 0, len(e.defs))
	famSum := make(map[string]float64)
	famWeight := make(map[string]float64)
	famDegraded := make(map[string]bool)

	for _, def := range e.defs {
		raw := clamp(def.Compute(p, rules))
		mult := rules.MultiplierFor(def.ID)
		degraded := p.Intent.FallbackMode && def.Family == FamilyIntent

		v := Value{
			ID:         def.ID,
			Family:     def.Family,
			Raw:        raw,
			Multiplier: mult,
			Value:      clamp(raw * mult),
			Degraded:   degraded,
		}
		values = append(values, v)

		famSum[def.Family] += def.Weight * v.Value
		famWeight[def.Family] += def.Weight
		if degraded {
			famDegraded[def.Family] = true
		}
	}

	families, composite := e.foldFamilies(famSum, famWeight, famDegraded, rules)
	if p.Intent.FallbackMode {
		logging.Debugf("kpi vector computed in intent fallback mode, composite %.1f", composite)
	}

	return Result{
		Values:       values,
		Families:     families,
		Composite:    clamp(composite),
		FallbackMode: p.Intent.FallbackMode,
	}
}

// foldFamilies turns per-family accumulators into weighted family scores.
// Configured family weights are scaled by the scope's family multiplier and
// renormalized so the effective weights still sum to 1.
func (e *Engine) foldFamilies(famSum, famWeight map[string]float64, famDegraded map[string]bool, rules *ruleset.MergedRuleSet) ([]FamilyScore, float64) {
	effective := make([]float64, len(e.families))
	total := 0.0
	for i, fam := range e.families {
		effective[i] = fam.Weight * rules.MultiplierFor("family_"+fam.Name)
		total += effective[i]
	}

	families := make([]FamilyScore, 0, len(e.families))
	composite := 0.0
	for i, fam := range e.families {
		weight := 0.0
		if total > 0 {
			weight = effective[i] / total
		}

		score := 0.0
		if w := famWeight[fam.Name]; w > 0 {
			score = clamp(famSum[fam.Name] / w)
		}

		families = append(families, FamilyScore{
			Family:   fam.Name,
			Score:    score,
			Weight:   weight,
			Degraded: famDegraded[fam.Name],
		})
		composite += weight * score
	}
	return families, composite
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
