package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/metascore/pkg/config"
)

func TestComposeOverallScore(t *testing.T) {
	comp, err := NewComposer(config.Default())
	require.NoError(t, err)

	scores := comp.Compose(Inputs{
		"title":       80,
		"subtitle":    60,
		"description": 70,
	})

	overall, ok := ByName(scores, "overall")
	require.True(t, ok)
	assert.InDelta(t, 80*0.65+60*0.35, overall.Value, 1e-9)

	conversion, ok := ByName(scores, "conversion")
	require.True(t, ok)
	assert.InDelta(t, 70.0, conversion.Value, 1e-9, "description scores separately, not in the ranking formula")
}

func TestComposerRejectsBadWeightSum(t *testing.T) {
	cfg := config.Default()
	cfg.Formulas = []config.Formula{{
		Name: "overall",
		Terms: []config.Term{
			{Source: "title", Weight: 0.7},
			{Source: "subtitle", Weight: 0.4},
		},
	}}

	_, err := NewComposer(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to")
}

func TestComposerRejectsEmptyFormula(t *testing.T) {
	cfg := config.Default()
	cfg.Formulas = []config.Formula{{Name: "overall"}}

	_, err := NewComposer(cfg)
	require.Error(t, err)
}

func TestMissingSourceContributesZero(t *testing.T) {
	comp, err := NewComposer(config.Default())
	require.NoError(t, err)

	scores := comp.Compose(Inputs{"title": 90})
	overall, ok := ByName(scores, "overall")
	require.True(t, ok)
	assert.InDelta(t, 90*0.65, overall.Value, 1e-9)
}

func TestComposeIsDeterministic(t *testing.T) {
	comp, err := NewComposer(config.Default())
	require.NoError(t, err)

	in := Inputs{"title": 47.5, "subtitle": 61.2, "description": 33.3}
	first := comp.Compose(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, comp.Compose(in))
	}
}

func TestComposeClampsToBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Formulas = []config.Formula{{
		Name:  "overall",
		Terms: []config.Term{{Source: "title", Weight: 1.0}},
	}}
	comp, err := NewComposer(cfg)
	require.NoError(t, err)

	scores := comp.Compose(Inputs{"title": 140})
	assert.Equal(t, 100.0, scores[0].Value)
}
