package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/elements"
	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/kpi"
	"github.com/asolytics/metascore/pkg/ruleset"
	"github.com/asolytics/metascore/pkg/rulestore"
)

func baseRules(docs ...*rulestore.OverrideDocument) *ruleset.MergedRuleSet {
	m := ruleset.NewMerger(config.Default())
	return m.Merge(ruleset.Scope{Vertical: "fitness"}, docs, ruleset.SourceFresh)
}

func failedRule(id string, score, weight float64, metrics map[string]float64) elements.RuleResult {
	return elements.RuleResult{
		RuleID:   id,
		Score:    score,
		Weight:   weight,
		Passed:   false,
		Evidence: elements.Evidence{Metrics: metrics},
	}
}

func TestBuildRanksBySeverityThenImpact(t *testing.T) {
	in := Input{
		Elements: []elements.ElementScoreResult{{
			Element: elements.KindTitle,
			Rules: []elements.RuleResult{
				failedRule("character_usage", 0, 0.25, map[string]float64{"usage_pct": 113, "char_limit": 30}),
				failedRule("unique_keywords", 35, 0.30, map[string]float64{"count": 1}),
				failedRule("combo_coverage", 50, 0.25, map[string]float64{"count": 1}),
			},
		}},
		Rules: baseRules(),
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 3)

	assert.Equal(t, "character_usage", recs[0].RuleID)
	assert.Equal(t, SeverityCritical, recs[0].Severity)
	assert.Equal(t, "unique_keywords", recs[1].RuleID)
	assert.Equal(t, SeverityStrong, recs[1].Severity)
	assert.Equal(t, "combo_coverage", recs[2].RuleID)
	assert.Equal(t, SeverityModerate, recs[2].Severity)
}

func TestOverflowUsesOverflowTemplate(t *testing.T) {
	in := Input{
		Elements: []elements.ElementScoreResult{{
			Element: elements.KindTitle,
			Rules: []elements.RuleResult{
				failedRule("character_usage", 0, 0.25, map[string]float64{"usage_pct": 113, "char_limit": 30}),
			},
		}},
		Rules: baseRules(),
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Message, "exceeds the platform limit")
	assert.Contains(t, recs[0].Message, "30")
}

func TestDuplicateRuleAcrossElementsKeepsWorstFinding(t *testing.T) {
	in := Input{
		Elements: []elements.ElementScoreResult{
			{
				Element: elements.KindTitle,
				Rules: []elements.RuleResult{
					failedRule("combo_coverage", 50, 0.25, map[string]float64{"count": 1}),
				},
			},
			{
				Element: elements.KindSubtitle,
				Rules: []elements.RuleResult{
					failedRule("combo_coverage", 20, 0.25, map[string]float64{"count": 0}),
				},
			},
		},
		Rules: baseRules(),
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 1, "one recommendation per rule id")
	assert.Equal(t, SeverityStrong, recs[0].Severity, "the worse of the two findings survives dedup")
	assert.Equal(t, string(elements.KindSubtitle), recs[0].Element)
}

func TestPassedRulesProduceNothing(t *testing.T) {
	in := Input{
		Elements: []elements.ElementScoreResult{{
			Element: elements.KindTitle,
			Rules: []elements.RuleResult{
				{RuleID: "character_usage", Score: 100, Weight: 0.25, Passed: true},
			},
		}},
		Rules: baseRules(),
	}
	assert.Empty(t, NewEngine().Build(in))
}

func TestWeakIntentFamilyRecommended(t *testing.T) {
	in := Input{
		KPI: kpi.Result{
			Families: []kpi.FamilyScore{{Family: kpi.FamilyIntent, Score: 25, Weight: 0.25}},
			Values:   []kpi.Value{{ID: "intent_spread", Raw: 25}},
		},
		Rules: baseRules(),
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 1)
	assert.Equal(t, "intent_coverage", recs[0].RuleID)
	assert.Contains(t, recs[0].Message, "1 of 4")
}

func TestNoisyFootprintRecommended(t *testing.T) {
	in := Input{
		Footprint: intent.Footprint{
			Counts: map[intent.Bucket]int{intent.BucketNoise: 6, intent.BucketLearning: 2},
			Total:  8,
		},
		Rules: baseRules(),
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 1)
	assert.Equal(t, "discovery_balance", recs[0].RuleID)
	assert.Contains(t, recs[0].Message, "75%")
	assert.Equal(t, SeverityModerate, recs[0].Severity)
}

func TestVerticalTemplateOverrideUsed(t *testing.T) {
	rules := baseRules(&rulestore.OverrideDocument{
		Scope: "vertical:fitness",
		Templates: map[string]string{
			"unique_keywords": "Add fitness terms to %s; only %d found.",
		},
	})

	in := Input{
		Elements: []elements.ElementScoreResult{{
			Element: elements.KindTitle,
			Rules: []elements.RuleResult{
				failedRule("unique_keywords", 35, 0.30, map[string]float64{"count": 1}),
			},
		}},
		Rules: rules,
	}

	recs := NewEngine().Build(in)
	require.Len(t, recs, 1)
	assert.Equal(t, "Add fitness terms to title; only 1 found.", recs[0].Message)
}

func TestBuildIsDeterministic(t *testing.T) {
	in := Input{
		Elements: []elements.ElementScoreResult{{
			Element: elements.KindTitle,
			Rules: []elements.RuleResult{
				failedRule("unique_keywords", 35, 0.30, map[string]float64{"count": 1}),
				failedRule("noise_penalty", 35, 0.20, map[string]float64{"noise_ratio": 0.6}),
				failedRule("combo_coverage", 20, 0.25, map[string]float64{"count": 0}),
			},
		}},
		Rules: baseRules(),
	}

	eng := NewEngine()
	first := eng.Build(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, eng.Build(in))
	}
}
