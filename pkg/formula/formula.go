// Package formula combines element scores into the declared composite
// scores. Formulas are plain weighted sums declared in configuration; the
// composer validates the weight invariant once at construction and applies
// the formulas verbatim afterwards.
package formula

import (
	"fmt"
	"math"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/observability/logging"
)

// weightTolerance is the allowed deviation from 1.0 for a formula's term
// weights.
const weightTolerance = 1e-9

// Inputs maps score source names (element kinds, KPI composites) to their
// 0-100 values.
type Inputs map[string]float64

// TermValue records one term's contribution to a composed score.
type TermValue struct {
	Source string  `json:"source"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

// Score is one composed formula result.
type Score struct {
	Name  string      `json:"name"`
	Value float64     `json:"value"`
	Terms []TermValue `json:"terms"`
}

// Composer applies the declared formulas to per-call inputs. It is immutable
// after construction and safe for concurrent use.
type Composer struct {
	formulas []config.Formula
}

// NewComposer validates the configured formulas and returns a composer.
// Every formula's term weights must sum to 1.0 within tolerance.
func NewComposer(cfg *config.EngineConfig) (*Composer, error) {
	for _, f := range cfg.Formulas {
		if len(f.Terms) == 0 {
			return nil, fmt.Errorf("formula %q declares no terms", f.Name)
		}
		if sum := f.WeightSum(); math.Abs(sum-1.0) > weightTolerance {
			return nil, fmt.Errorf("formula %q term weights sum to %v, want 1.0", f.Name, sum)
		}
	}
	return &Composer{formulas: cfg.Formulas}, nil
}

// Compose evaluates every declared formula against the inputs, in
// declaration order. A source missing from the inputs contributes zero; the
// gap is logged but never aborts the call.
func (c *Composer) Compose(inputs Inputs) []Score {
	scores := make([]Score, 0, len(c.formulas))
	for _, f := range c.formulas {
		score := Score{Name: f.Name, Terms: make([]TermValue, 0, len(f.Terms))}
		for _, term := range f.Terms {
			v, ok := inputs[term.Source]
			if !ok {
				logging.Warnf("formula %q references missing source %q, scoring it 0", f.Name, term.Source)
			}
			score.Terms = append(score.Terms, TermValue{Source: term.Source, Weight: term.Weight, Score: v})
			score.Value += term.Weight * v
		}
		score.Value = clamp(score.Value)
		scores = append(scores, score)
	}
	return scores
}

// ByName returns the named score from a composed slice.
func ByName(scores []Score, name string) (Score, bool) {
	for _, s := range scores {
		if s.Name == name {
			return s, true
		}
	}
	return Score{}, false
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
