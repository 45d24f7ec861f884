// Package elements evaluates the listing's text elements (title, subtitle,
// description) against the static rule catalog, producing per-rule scores
// with evidence and a weighted per-element score. Thresholds come from the
// merged rule set so every rule is recalibratable per scope.
package elements

import (
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// Kind names a listing text element.
type Kind string

const (
	KindTitle       Kind = "title"
	KindSubtitle    Kind = "subtitle"
	KindDescription Kind = "description"
)

// Kinds lists the element kinds in audit order.
var Kinds = []Kind{KindTitle, KindSubtitle, KindDescription}

// Element is one text element with its derived analysis. Elements are built
// fresh per audit call and discarded with it.
type Element struct {
	Kind      Kind                  `json:"kind"`
	Raw       string                `json:"raw"`
	CharLimit int                   `json:"char_limit"`
	Analysis  textanalysis.Analysis `json:"analysis"`
}

// New builds an element and runs the text analysis. Empty text yields an
// element with a zero-valued analysis; it scores as empty rather than
// aborting the audit.
func New(kind Kind, raw string, charLimit int) *Element {
	return &Element{
		Kind:      kind,
		Raw:       raw,
		CharLimit: charLimit,
		Analysis:  textanalysis.Analyze(raw),
	}
}

// Empty reports whether the element has no scoreable content.
func (e *Element) Empty() bool {
	return e.Analysis.WordCount == 0
}

// UsagePct returns the percentage of the platform character limit used.
// Values above 100 mean overflow.
func (e *Element) UsagePct() float64 {
	if e.CharLimit <= 0 {
		return 0
	}
	return float64(e.Analysis.CharCount) / float64(e.CharLimit) * 100
}

// tokenSet returns the element's tokens as a membership set.
func (e *Element) tokenSet() map[string]bool {
	set := make(map[string]bool, len(e.Analysis.Tokens))
	for _, tok := range e.Analysis.Tokens {
		set[tok] = true
	}
	return set
}
