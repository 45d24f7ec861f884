// Package combos extracts multi-word phrases (2-4 token windows) from
// listing elements. Combos are the unit of keyword-coverage analysis:
// generation walks every contiguous window, deduplicates by normalized
// phrase and drops windows made entirely of stopwords.
package combos

import (
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// MinWindow and MaxWindow bound the n-gram sizes generated per element.
const (
	MinWindow = 2
	MaxWindow = 4
)

// Record is one deduplicated phrase extracted from listing text. Records are
// built fresh per audit call and never persisted.
type Record struct {
	// Phrase is the normalized (lowercase, space-joined) form and also the
	// deduplication key.
	Phrase string `json:"phrase"`

	// Tokens are the normalized tokens making up the phrase.
	Tokens []string `json:"tokens"`

	// Frequency counts how many windows produced this phrase across all
	// elements in the call.
	Frequency int `json:"frequency"`

	// Element names the element the phrase first appeared in.
	Element string `json:"element"`
}

// ElementTokens pairs an element name with its normalized tokens. Generation
// order follows slice order, which keeps output deterministic.
type ElementTokens struct {
	Element string
	Tokens  []string
}

// Generate produces all deduplicated combos across the given elements.
// Empty elements contribute nothing; an input with no viable windows yields
// an empty slice, not an error.
func Generate(elements []ElementTokens) []Record {
	var ordered []*Record
	seen := make(map[string]*Record)

	for _, el := range elements {
		for size := MinWindow; size <= MaxWindow; size++ {
			for start := 0; start+size <= len(el.Tokens); start++ {
				window := el.Tokens[start : start+size]
				if allStopwords(window) {
					continue
				}

				phrase := textanalysis.NormalizePhrase(window)
				if rec, ok := seen[phrase]; ok {
					rec.Frequency++
					continue
				}

				rec := &Record{
					Phrase:    phrase,
					Tokens:    append([]string(nil), window...),
					Frequency: 1,
					Element:   el.Element,
				}
				seen[phrase] = rec
				ordered = append(ordered, rec)
			}
		}
	}

	out := make([]Record, len(ordered))
	for i, rec := range ordered {
		out[i] = *rec
	}
	return out
}

// Phrases returns the normalized phrase of every record, preserving order.
func Phrases(records []Record) []string {
	phrases := make([]string, len(records))
	for i, rec := range records {
		phrases[i] = rec.Phrase
	}
	return phrases
}

// ForElement filters records down to those first seen in the named element.
func ForElement(records []Record, element string) []Record {
	var out []Record
	for _, rec := range records {
		if rec.Element == element {
			out = append(out, rec)
		}
	}
	return out
}

func allStopwords(window []string) bool {
	for _, tok := range window {
		if !textanalysis.IsStopword(tok) {
			return false
		}
	}
	return true
}
