package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassifierRejectsUnknownCategory(t *testing.T) {
	_, err := NewClassifier([]Pattern{
		{Category: "promotional", Match: []string{"sale"}},
	})
	require.Error(t, err)
}

func TestMatchWordBoundaries(t *testing.T) {
	c, err := NewClassifier([]Pattern{
		{Category: Commercial, Match: []string{"pro"}},
	})
	require.NoError(t, err)

	_, ok := c.Match("program for runners")
	assert.False(t, ok, "\"pro\" must not match inside \"program\"")

	cat, ok := c.Match("upgrade to pro")
	require.True(t, ok)
	assert.Equal(t, Commercial, cat)
}

func TestMatchFirstPatternWins(t *testing.T) {
	c, err := NewClassifier([]Pattern{
		{Category: Informational, Match: []string{"tracker"}},
		{Category: Commercial, Match: []string{"tracker"}},
	})
	require.NoError(t, err)

	cat, ok := c.Match("calorie tracker")
	require.True(t, ok)
	assert.Equal(t, Informational, cat)
}

func TestDistributionEmptyInput(t *testing.T) {
	c := NewFallbackClassifier()
	d := c.Distribution(nil)

	assert.Equal(t, 0, d.Total)
	assert.Equal(t, 0, d.Matched)
	for _, cat := range Categories {
		assert.Zero(t, d.Counts[cat])
		assert.Zero(t, d.Coverage[cat])
	}
	assert.True(t, d.FallbackMode)
}

func TestDistributionCoverageBounds(t *testing.T) {
	c := NewFallbackClassifier()
	d := c.Distribution([]string{"learn spanish", "calorie tracker", "buy now", "xyzzy"})

	assert.Equal(t, 4, d.Total)
	for cat, cov := range d.Coverage {
		assert.GreaterOrEqual(t, cov, 0.0, "category %s", cat)
		assert.LessOrEqual(t, cov, 100.0, "category %s", cat)
	}
	assert.Equal(t, 1, d.Counts[Informational], "learn spanish")
	assert.Equal(t, 1, d.Counts[Commercial], "calorie tracker")
	assert.Equal(t, 1, d.Counts[Transactional], "buy now")
}

func TestFallbackModeVisible(t *testing.T) {
	fallback := NewFallbackClassifier()
	assert.Equal(t, SourceFallback, fallback.Source())
	assert.True(t, fallback.FallbackMode())
	assert.LessOrEqual(t, fallback.PatternCount(), 15,
		"fallback set must stay within its fixed size budget")

	store, err := NewClassifier([]Pattern{
		{Category: Navigational, Match: []string{"duolingo"}},
	})
	require.NoError(t, err)
	assert.False(t, store.FallbackMode())

	d := fallback.Distribution([]string{"learn spanish"})
	assert.True(t, d.FallbackMode)
	f := fallback.Footprint([]string{"learn spanish"})
	assert.True(t, f.FallbackMode, "footprint must share the distribution's fallback state")
}

func TestFootprintBucketing(t *testing.T) {
	c, err := NewClassifier([]Pattern{
		{Category: Informational, Match: []string{"learn"}},
		{Category: Transactional, Match: []string{"subscribe"}},
		{Category: Navigational, Match: []string{"fittrack"}},
	})
	require.NoError(t, err)

	f := c.Footprint([]string{
		"learn spanish",
		"subscribe today",
		"fittrack app",
		"random noise phrase",
	})

	assert.Equal(t, 1, f.Counts[BucketLearning])
	assert.Equal(t, 1, f.Counts[BucketOutcome])
	assert.Equal(t, 1, f.Counts[BucketBrand])
	assert.Equal(t, 1, f.Counts[BucketNoise])
}
