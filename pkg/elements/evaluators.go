package elements

import (
	"fmt"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// hookWords are opening/call-to-action terms rewarded in descriptions.
var hookWords = map[string]bool{
	"achieve": true, "build": true, "discover": true, "join": true,
	"master": true, "start": true, "track": true, "transform": true,
	"try": true, "unlock": true,
}

// evalCharacterUsage scores tiered usage of the platform character limit.
// Overflow caps the score at 0: truncated text loses keywords in store
// search, so exceeding the limit is worse than underusing it.
func evalCharacterUsage(ctx EvalContext) RuleResult {
	el := ctx.Element
	pct := el.UsagePct()

	low := ctx.Rules.Threshold(config.KeyCharUsageLowPct, 50)
	mid := ctx.Rules.Threshold(config.KeyCharUsageMidPct, 70)
	high := ctx.Rules.Threshold(config.KeyCharUsageHighPct, 90)

	var score float64
	switch {
	case pct > 100:
		score = 0
	case pct < low:
		score = 40
	case pct < mid:
		score = 60
	case pct < high:
		score = 85
	default:
		score = 100
	}

	return RuleResult{
		Score:  score,
		Passed: pct <= 100 && pct >= low,
		Evidence: Evidence{
			Thresholds: map[string]float64{"low_pct": low, "mid_pct": mid, "high_pct": high},
			Metrics:    map[string]float64{"usage_pct": pct, "char_limit": float64(el.CharLimit)},
			Detail: fmt.Sprintf("%d of %d characters used (%.0f%%)",
				el.Analysis.CharCount, el.CharLimit, pct),
		},
	}
}

// evalUniqueKeywords scores the count of unique high-relevance tokens, with
// a relevance bonus of up to +30 on top of the count-based base score.
func evalUniqueKeywords(ctx EvalContext) RuleResult {
	highRel := ctx.Rules.Threshold(config.KeyUniqueKeywordsHighRelevance, 0.5)
	minPass := int(ctx.Rules.Threshold(config.KeyUniqueKeywordsMinPass, 2))

	matched, relevanceSum := highValueTokens(ctx, ctx.Element, highRel)
	n := len(matched)

	score := float64(n) * 20
	if score > 80 {
		score = 80
	}
	if n > 0 {
		score += relevanceSum / float64(n) * 30
	}
	if score > 100 {
		score = 100
	}

	return RuleResult{
		Score:  score,
		Passed: n >= minPass,
		Evidence: Evidence{
			MatchedTokens: matched,
			Thresholds:    map[string]float64{"high_relevance": highRel, "min_pass": float64(minPass)},
			Metrics:       map[string]float64{"count": float64(n)},
			Detail:        fmt.Sprintf("%d unique high-relevance tokens", n),
		},
	}
}

// evalComboCoverage scores tiered combo counts for the element.
func evalComboCoverage(ctx EvalContext) RuleResult {
	minPass := int(ctx.Rules.Threshold(config.KeyComboCoverageMinPass, 2))
	n := len(ctx.Combos)

	var score float64
	switch {
	case n == 0:
		score = 20
	case n <= 2:
		score = 50
	case n <= 5:
		score = 75
	default:
		score = 90
	}

	return RuleResult{
		Score:  score,
		Passed: n >= minPass,
		Evidence: Evidence{
			Thresholds: map[string]float64{"min_pass": float64(minPass)},
			Metrics:    map[string]float64{"count": float64(n)},
			Detail:     fmt.Sprintf("%d keyword combinations", n),
		},
	}
}

// evalNoisePenalty deducts from a perfect score when the noise ratio
// crosses the moderate and heavy thresholds.
func evalNoisePenalty(ctx EvalContext) RuleResult {
	ratio := ctx.Element.Analysis.NoiseRatio
	moderate := ctx.Rules.Threshold(config.KeyNoiseModerateRatio, 0.30)
	heavy := ctx.Rules.Threshold(config.KeyNoiseHeavyRatio, 0.50)

	score := 100.0
	switch {
	case ratio > heavy:
		score -= 30
	case ratio > moderate:
		score -= 15
	}

	return RuleResult{
		Score:  score,
		Passed: ratio <= moderate,
		Evidence: Evidence{
			Thresholds: map[string]float64{"moderate_ratio": moderate, "heavy_ratio": heavy},
			Metrics:    map[string]float64{"noise_ratio": ratio},
			Detail:     fmt.Sprintf("noise ratio %.0f%%", ratio*100),
		},
	}
}

// evalSubtitleComplementarity penalizes subtitles that repeat the title's
// tokens instead of adding new ones.
func evalSubtitleComplementarity(ctx EvalContext) RuleResult {
	sub := ctx.Element
	if sub.Empty() {
		return RuleResult{
			Score:    0,
			Passed:   false,
			Evidence: Evidence{Detail: "subtitle is empty"},
		}
	}

	maxOverlap := ctx.Rules.Threshold(config.KeySubtitleOverlapRatio, 0.40)

	titleSet := map[string]bool{}
	if ctx.Title != nil {
		titleSet = ctx.Title.tokenSet()
	}

	var overlapping []string
	unique := uniqueTokens(sub.Analysis.Tokens)
	for _, tok := range unique {
		if titleSet[tok] {
			overlapping = append(overlapping, tok)
		}
	}
	overlap := 0.0
	if len(unique) > 0 {
		overlap = float64(len(overlapping)) / float64(len(unique))
	}

	var score float64
	switch {
	case overlap >= maxOverlap:
		score = 20
	case overlap >= maxOverlap/2:
		score = 60
	case overlap > 0:
		score = 85
	default:
		score = 100
	}

	return RuleResult{
		Score:  score,
		Passed: overlap < maxOverlap,
		Evidence: Evidence{
			MatchedTokens: overlapping,
			Thresholds:    map[string]float64{"overlap_ratio": maxOverlap},
			Metrics:       map[string]float64{"overlap_ratio": overlap},
			Detail:        fmt.Sprintf("%.0f%% of subtitle tokens repeat the title", overlap*100),
		},
	}
}

// evalSubtitleIncrementalValue rewards high-relevance subtitle tokens that
// the title does not already cover.
func evalSubtitleIncrementalValue(ctx EvalContext) RuleResult {
	sub := ctx.Element
	highRel := ctx.Rules.Threshold(config.KeyUniqueKeywordsHighRelevance, 0.5)

	titleSet := map[string]bool{}
	if ctx.Title != nil {
		titleSet = ctx.Title.tokenSet()
	}

	matched, _ := highValueTokens(ctx, sub, highRel)
	var incremental []string
	for _, tok := range matched {
		if !titleSet[tok] {
			incremental = append(incremental, tok)
		}
	}

	var score float64
	switch n := len(incremental); {
	case n == 0:
		score = 20
	case n == 1:
		score = 50
	case n == 2:
		score = 75
	default:
		score = 95
	}
	if sub.Empty() {
		score = 0
	}

	return RuleResult{
		Score:  score,
		Passed: len(incremental) >= 1 && !sub.Empty(),
		Evidence: Evidence{
			MatchedTokens: incremental,
			Metrics:       map[string]float64{"count": float64(len(incremental))},
			Detail:        fmt.Sprintf("%d high-value tokens beyond the title", len(incremental)),
		},
	}
}

// evalDescriptionKeywordDepth rewards long-tail keyword depth in the
// description, which has room for far more vocabulary than the title line.
func evalDescriptionKeywordDepth(ctx EvalContext) RuleResult {
	el := ctx.Element
	highRel := ctx.Rules.Threshold(config.KeyUniqueKeywordsHighRelevance, 0.5)

	if el.Empty() {
		return RuleResult{Score: 0, Passed: false, Evidence: Evidence{Detail: "description is empty"}}
	}

	matched, _ := highValueTokens(ctx, el, highRel)
	var score float64
	switch n := len(matched); {
	case n == 0:
		score = 10
	case n < 5:
		score = 40
	case n < 10:
		score = 65
	case n < 20:
		score = 85
	default:
		score = 95
	}

	return RuleResult{
		Score:  score,
		Passed: len(matched) >= 5,
		Evidence: Evidence{
			MatchedTokens: matched,
			Thresholds:    map[string]float64{"high_relevance": highRel},
			Metrics:       map[string]float64{"count": float64(len(matched))},
			Detail:        fmt.Sprintf("%d unique high-relevance tokens in description", len(matched)),
		},
	}
}

// evalReadability scores the description's reading ease.
func evalReadability(ctx EvalContext) RuleResult {
	el := ctx.Element
	easyMin := ctx.Rules.Threshold(config.KeyReadabilityEasyMin, 60)

	if el.Empty() {
		return RuleResult{Score: 0, Passed: false, Evidence: Evidence{Detail: "description is empty"}}
	}

	ease := el.Analysis.ReadingEase
	var score float64
	switch {
	case ease >= easyMin:
		score = 90
	case ease >= easyMin-20:
		score = 70
	default:
		score = 45
	}

	return RuleResult{
		Score:  score,
		Passed: ease >= easyMin,
		Evidence: Evidence{
			Thresholds: map[string]float64{"easy_min": easyMin},
			Metrics:    map[string]float64{"reading_ease": ease},
			Detail:     fmt.Sprintf("reading ease %.0f", ease),
		},
	}
}

// evalHookStrength rewards hook/call-to-action vocabulary in descriptions.
func evalHookStrength(ctx EvalContext) RuleResult {
	el := ctx.Element
	minMatches := int(ctx.Rules.Threshold(config.KeyHookMinMatches, 1))

	if el.Empty() {
		return RuleResult{Score: 0, Passed: false, Evidence: Evidence{Detail: "description is empty"}}
	}

	var matched []string
	for _, tok := range uniqueTokens(el.Analysis.Tokens) {
		if hookWords[tok] {
			matched = append(matched, tok)
		}
	}

	var score float64
	if len(matched) >= minMatches {
		score = 70 + float64(len(matched))*10
		if score > 100 {
			score = 100
		}
	} else {
		score = 30
	}

	return RuleResult{
		Score:  score,
		Passed: len(matched) >= minMatches,
		Evidence: Evidence{
			MatchedTokens: matched,
			Thresholds:    map[string]float64{"min_matches": float64(minMatches)},
			Metrics:       map[string]float64{"count": float64(len(matched))},
			Detail:        fmt.Sprintf("%d hook words found", len(matched)),
		},
	}
}

// highValueTokens returns the element's unique tokens at or above the
// relevance threshold, in first-appearance order, plus their relevance sum.
func highValueTokens(ctx EvalContext, el *Element, highRel float64) ([]string, float64) {
	var matched []string
	sum := 0.0
	for _, tok := range uniqueTokens(el.Analysis.Tokens) {
		if textanalysis.IsNoise(tok) {
			continue
		}
		if rel := ctx.Rules.RelevanceOf(tok); rel >= highRel {
			matched = append(matched, tok)
			sum += rel
		}
	}
	return matched, sum
}

// uniqueTokens deduplicates tokens preserving first-appearance order, which
// keeps evidence output deterministic.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
