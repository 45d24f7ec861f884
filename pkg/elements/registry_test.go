package elements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/metascore/pkg/combos"
	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/ruleset"
)

func baseRules() *ruleset.MergedRuleSet {
	m := ruleset.NewMerger(config.Default())
	return m.Merge(ruleset.Scope{Vertical: "fitness"}, nil, ruleset.SourceFresh)
}

func ruleByID(t *testing.T, res ElementScoreResult, id string) RuleResult {
	t.Helper()
	for _, r := range res.Rules {
		if r.RuleID == id {
			return r
		}
	}
	t.Fatalf("rule %q not found in result", id)
	return RuleResult{}
}

func TestShortTitleScoresLowCharacterUsage(t *testing.T) {
	title := New(KindTitle, "FitTrack", 30)
	res := NewRegistry().Evaluate(title, nil, nil, baseRules())

	usage := ruleByID(t, res, "character_usage")
	assert.Equal(t, 40.0, usage.Score, "8 of 30 chars sits in the lowest usage tier")
	assert.False(t, usage.Passed)

	keywords := ruleByID(t, res, "unique_keywords")
	assert.False(t, keywords.Passed, "a single token cannot satisfy the unique keyword minimum")
	assert.Less(t, res.Score, 60.0)
}

func TestOverflowTitleScoresZeroCharacterUsage(t *testing.T) {
	raw := "Super Fitness Workout Tracker Plus" // 34 chars
	require.Len(t, raw, 34)

	title := New(KindTitle, raw, 30)
	res := NewRegistry().Evaluate(title, nil, nil, baseRules())

	usage := ruleByID(t, res, "character_usage")
	assert.Equal(t, 0.0, usage.Score, "overflow is worse than underuse")
	assert.False(t, usage.Passed)
}

func TestRepetitiveSubtitlePenalized(t *testing.T) {
	title := New(KindTitle, "Workout Tracker Pro", 30)
	sub := New(KindSubtitle, "Workout Tracker", 30)

	res := NewRegistry().Evaluate(sub, title, nil, baseRules())

	comp := ruleByID(t, res, "subtitle_complementarity")
	assert.Equal(t, 20.0, comp.Score, "full overlap with the title lands in the lowest tier")
	assert.False(t, comp.Passed)
	assert.ElementsMatch(t, []string{"workout", "tracker"}, comp.Evidence.MatchedTokens)

	incr := ruleByID(t, res, "subtitle_incremental_value")
	assert.Equal(t, 20.0, incr.Score, "no tokens beyond the title means no incremental value")
	assert.False(t, incr.Passed)
}

func TestComplementarySubtitleRewarded(t *testing.T) {
	title := New(KindTitle, "Workout Tracker", 30)
	sub := New(KindSubtitle, "Cardio Plans Nutrition Log", 30)

	res := NewRegistry().Evaluate(sub, title, nil, baseRules())

	comp := ruleByID(t, res, "subtitle_complementarity")
	assert.Equal(t, 100.0, comp.Score)
	assert.True(t, comp.Passed)

	incr := ruleByID(t, res, "subtitle_incremental_value")
	assert.True(t, incr.Passed)
	assert.GreaterOrEqual(t, incr.Score, 75.0)
}

func TestEmptySubtitleScoresZeroWithoutAborting(t *testing.T) {
	title := New(KindTitle, "Workout Tracker", 30)
	sub := New(KindSubtitle, "", 30)

	res := NewRegistry().Evaluate(sub, title, nil, baseRules())

	comp := ruleByID(t, res, "subtitle_complementarity")
	assert.Equal(t, 0.0, comp.Score)
	assert.Equal(t, "subtitle is empty", comp.Evidence.Detail)
	assert.Less(t, res.Score, 50.0)
}

func TestComboCoverageTiers(t *testing.T) {
	rules := baseRules()
	reg := NewRegistry()

	title := New(KindTitle, "Workout Tracker Cardio Plans", 30)
	recs := combos.Generate([]combos.ElementTokens{
		{Element: string(KindTitle), Tokens: title.Analysis.Tokens},
	})

	res := reg.Evaluate(title, nil, recs, rules)
	coverage := ruleByID(t, res, "combo_coverage")
	assert.True(t, coverage.Passed)
	assert.GreaterOrEqual(t, coverage.Score, 75.0, "4 tokens yield 6 windows")

	// No combos attributed to the element sits in the lowest tier.
	bare := reg.Evaluate(New(KindTitle, "FitTrack", 30), nil, nil, rules)
	assert.Equal(t, 20.0, ruleByID(t, bare, "combo_coverage").Score)
}

func TestDescriptionRules(t *testing.T) {
	rules := baseRules()
	reg := NewRegistry()

	desc := New(KindDescription,
		"Track your daily workouts. Build strength with simple plans. Start today and see progress each week.",
		4000)
	res := reg.Evaluate(desc, nil, nil, rules)

	hook := ruleByID(t, res, "hook_strength")
	assert.True(t, hook.Passed)
	assert.ElementsMatch(t, []string{"track", "build", "start"}, hook.Evidence.MatchedTokens)

	read := ruleByID(t, res, "readability")
	assert.Greater(t, read.Score, 0.0)

	depth := ruleByID(t, res, "description_keyword_depth")
	assert.True(t, depth.Passed, "a varied description carries at least 5 high-value tokens")
	assert.GreaterOrEqual(t, depth.Score, 65.0)

	// Empty description scores zero on description-only rules.
	empty := reg.Evaluate(New(KindDescription, "", 4000), nil, nil, rules)
	assert.Equal(t, 0.0, ruleByID(t, empty, "readability").Score)
	assert.Equal(t, 0.0, ruleByID(t, empty, "hook_strength").Score)
	assert.Equal(t, 0.0, ruleByID(t, empty, "description_keyword_depth").Score)
}

func TestNoisePenaltyTiers(t *testing.T) {
	rules := baseRules()
	reg := NewRegistry()

	clean := reg.Evaluate(New(KindTitle, "Workout Tracker Cardio", 30), nil, nil, rules)
	assert.Equal(t, 100.0, ruleByID(t, clean, "noise_penalty").Score)

	noisy := reg.Evaluate(New(KindTitle, "Best Amazing Top Workout", 30), nil, nil, rules)
	penalty := ruleByID(t, noisy, "noise_penalty")
	assert.Equal(t, 70.0, penalty.Score, "3 of 4 noise tokens crosses the heavy threshold")
	assert.False(t, penalty.Passed)
}

func TestElementScoreIsWeightedAverage(t *testing.T) {
	title := New(KindTitle, "FitTrack", 30)
	res := NewRegistry().Evaluate(title, nil, nil, baseRules())

	var weighted, weightSum float64
	for _, r := range res.Rules {
		weighted += r.Weight * r.Score
		weightSum += r.Weight
	}
	require.Greater(t, weightSum, 0.0)
	assert.InDelta(t, weighted/weightSum, res.Score, 1e-9)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
}
