// Package recommend converts rule failures, KPI deficiencies and discovery
// imbalances into a ranked, deduplicated recommendation list. Message text
// comes from the merged rule set's templates so verticals can reword
// recommendations without code changes.
package recommend

import (
	"fmt"
	"sort"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/elements"
	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/kpi"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/ruleset"
)

// Severity tiers, from most to least urgent.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityStrong   Severity = "strong"
	SeverityModerate Severity = "moderate"
	SeverityOptional Severity = "optional"
)

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityStrong:   1,
	SeverityModerate: 2,
	SeverityOptional: 3,
}

// Recommendation is one actionable finding.
type Recommendation struct {
	RuleID   string   `json:"rule_id"`
	Element  string   `json:"element,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Impact is the weighted score deficit that produced this finding,
	// used as the tiebreaker within a severity tier.
	Impact float64 `json:"impact"`
}

// Input carries everything upstream of the recommendation pass.
type Input struct {
	Elements  []elements.ElementScoreResult
	KPI       kpi.Result
	Footprint intent.Footprint
	Rules     *ruleset.MergedRuleSet
}

// Engine builds recommendations. It is stateless and safe for concurrent use.
type Engine struct{}

// NewEngine returns a recommendation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Build walks the failed rules, weak KPI families and the discovery
// footprint, producing a severity-ranked, deduplicated list. Ordering is
// deterministic: severity, then impact, then rule id.
func (e *Engine) Build(in Input) []Recommendation {
	byRule := make(map[string]Recommendation)

	for _, el := range in.Elements {
		for _, rule := range el.Rules {
			if rule.Passed {
				continue
			}
			rec := Recommendation{
				RuleID:   rule.RuleID,
				Element:  string(el.Element),
				Severity: severityForScore(rule.Score),
				Message:  renderRule(in.Rules, string(el.Element), rule),
				Impact:   rule.Weight * (100 - rule.Score),
			}
			keep(byRule, rec)
		}
	}

	if rec, ok := e.intentRecommendation(in); ok {
		keep(byRule, rec)
	}
	if rec, ok := e.discoveryRecommendation(in); ok {
		keep(byRule, rec)
	}

	out := make([]Recommendation, 0, len(byRule))
	for _, rec := range byRule {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if severityRank[out[i].Severity] != severityRank[out[j].Severity] {
			return severityRank[out[i].Severity] < severityRank[out[j].Severity]
		}
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		return out[i].RuleID < out[j].RuleID
	})

	logging.Debugf("built %d recommendations from %d elements", len(out), len(in.Elements))
	return out
}

// keep deduplicates by rule id, preferring the more urgent finding.
func keep(byRule map[string]Recommendation, rec Recommendation) {
	prev, ok := byRule[rec.RuleID]
	if !ok {
		byRule[rec.RuleID] = rec
		return
	}
	if severityRank[rec.Severity] < severityRank[prev.Severity] ||
		(rec.Severity == prev.Severity && rec.Impact > prev.Impact) {
		byRule[rec.RuleID] = rec
	}
}

// severityForScore maps a failed rule's score to a severity tier.
func severityForScore(score float64) Severity {
	switch {
	case score <= 0:
		return SeverityCritical
	case score < 40:
		return SeverityStrong
	case score < 60:
		return SeverityModerate
	default:
		return SeverityOptional
	}
}

// renderRule fills the template for a failed rule from its evidence. Rules
// without a configured template fall back to the evidence detail.
func renderRule(rules *ruleset.MergedRuleSet, element string, rule elements.RuleResult) string {
	m := rule.Evidence.Metrics
	templateID := rule.RuleID
	if rule.RuleID == "character_usage" && m["usage_pct"] > 100 {
		templateID = "character_overflow"
	}

	tpl, ok := rules.Template(templateID)
	if !ok {
		return fmt.Sprintf("%s: %s", element, rule.Evidence.Detail)
	}

	switch templateID {
	case "character_usage":
		return fmt.Sprintf(tpl, element, m["usage_pct"], int(m["char_limit"]))
	case "character_overflow":
		return fmt.Sprintf(tpl, element, int(m["char_limit"]))
	case "unique_keywords":
		return fmt.Sprintf(tpl, element, int(m["count"]))
	case "combo_coverage":
		return fmt.Sprintf(tpl, element, int(m["count"]), int(rule.Evidence.Thresholds["min_pass"]))
	case "noise_penalty":
		return fmt.Sprintf(tpl, element, m["noise_ratio"]*100)
	case "subtitle_complementarity":
		return fmt.Sprintf(tpl, m["overlap_ratio"]*100)
	case "readability":
		return fmt.Sprintf(tpl, m["reading_ease"])
	default:
		return tpl
	}
}

// intentRecommendation flags narrow intent coverage from the KPI vector.
func (e *Engine) intentRecommendation(in Input) (Recommendation, bool) {
	for _, fam := range in.KPI.Families {
		if fam.Family != kpi.FamilyIntent || fam.Score >= 50 {
			continue
		}

		hit := 0
		for _, v := range in.KPI.Values {
			if v.ID == "intent_spread" {
				hit = int(v.Raw / 100 * 4)
			}
		}

		msg := fmt.Sprintf("Listing text matches %d of 4 search-intent categories; broaden intent coverage.", hit)
		if tpl, ok := in.Rules.Template("intent_coverage"); ok {
			msg = fmt.Sprintf(tpl, hit)
		}
		return Recommendation{
			RuleID:   "intent_coverage",
			Severity: severityForScore(fam.Score),
			Message:  msg,
			Impact:   fam.Weight * (100 - fam.Score),
		}, true
	}
	return Recommendation{}, false
}

// discoveryRecommendation flags a footprint dominated by noise combos.
func (e *Engine) discoveryRecommendation(in Input) (Recommendation, bool) {
	if in.Footprint.Total == 0 {
		return Recommendation{}, false
	}

	noiseShare := float64(in.Footprint.Counts[intent.BucketNoise]) / float64(in.Footprint.Total)
	maxNoise := in.Rules.DiscoveryThreshold(config.KeyDiscoveryMaxNoiseShare, 0.50)
	if noiseShare <= maxNoise {
		return Recommendation{}, false
	}

	msg := fmt.Sprintf("Keyword strategy is unbalanced: %.0f%% of combos classify as noise.", noiseShare*100)
	if tpl, ok := in.Rules.Template("discovery_balance"); ok {
		msg = fmt.Sprintf(tpl, noiseShare*100)
	}
	return Recommendation{
		RuleID:   "discovery_balance",
		Severity: SeverityModerate,
		Message:  msg,
		Impact:   (noiseShare - maxNoise) * 100,
	}, true
}
