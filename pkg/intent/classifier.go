package intent

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/asolytics/metascore/pkg/observability/logging"
)

// Source identifies where the active pattern set came from.
type Source string

const (
	// SourceStore means patterns were supplied by the rule store.
	SourceStore Source = "store"
	// SourceFallback means the fixed in-process fallback set is active.
	SourceFallback Source = "fallback"
)

// compiledPattern stores precompiled regexps for one pattern's match terms.
type compiledPattern struct {
	category  Category
	originals []string
	regexps   []*regexp.Regexp
}

// Classifier matches tokens and phrases against an intent pattern set. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	source   Source
	patterns []compiledPattern
}

// NewClassifier compiles store-supplied patterns into a classifier. The
// caller is responsible for falling back to NewFallbackClassifier when the
// store has no patterns for the scope.
func NewClassifier(patterns []Pattern) (*Classifier, error) {
	return newClassifier(patterns, SourceStore)
}

// NewFallbackClassifier builds a classifier over the fixed fallback set.
// Compilation of the fallback set cannot fail; a failure here is a
// programming error and panics at startup rather than at audit time.
func NewFallbackClassifier() *Classifier {
	c, err := newClassifier(FallbackPatterns(), SourceFallback)
	if err != nil {
		panic(fmt.Sprintf("intent: fallback pattern set failed to compile: %v", err))
	}
	return c
}

func newClassifier(patterns []Pattern, source Source) (*Classifier, error) {
	c := &Classifier{source: source}

	for _, p := range patterns {
		switch p.Category {
		case Informational, Commercial, Transactional, Navigational:
		default:
			return nil, fmt.Errorf("unsupported intent category %q in pattern for scope %q", p.Category, p.Scope)
		}

		cp := compiledPattern{
			category:  p.Category,
			originals: p.Match,
			regexps:   make([]*regexp.Regexp, len(p.Match)),
		}
		for i, term := range p.Match {
			re, err := compileTerm(term)
			if err != nil {
				return nil, fmt.Errorf("failed to compile intent term %q: %w", term, err)
			}
			cp.regexps[i] = re
		}
		c.patterns = append(c.patterns, cp)
	}

	return c, nil
}

// compileTerm builds a case-insensitive regexp for a match term. Terms made
// of word characters get word-boundary anchors so "pro" does not match
// "program".
func compileTerm(term string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(term)

	hasWordChar := false
	for _, r := range term {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			hasWordChar = true
			break
		}
	}

	pattern := "(?i)" + quoted
	if hasWordChar {
		pattern = "(?i)\\b" + quoted + "\\b"
	}
	return regexp.Compile(pattern)
}

// Source returns the active pattern source.
func (c *Classifier) Source() Source {
	return c.source
}

// FallbackMode reports whether the fallback pattern set is active.
func (c *Classifier) FallbackMode() bool {
	return c.source == SourceFallback
}

// PatternCount returns the number of active patterns.
func (c *Classifier) PatternCount() int {
	return len(c.patterns)
}

// Match returns the intent category of the first pattern matching the
// phrase, evaluated in pattern order (first-match semantics).
func (c *Classifier) Match(phrase string) (Category, bool) {
	for _, p := range c.patterns {
		for _, re := range p.regexps {
			if re.MatchString(phrase) {
				return p.category, true
			}
		}
	}
	return "", false
}

// Distribution summarizes intent coverage across a set of phrases.
type Distribution struct {
	// Counts holds matched phrase counts per category.
	Counts map[Category]int `json:"counts"`

	// Coverage holds per-category coverage as a percentage of all phrases,
	// bounded to [0,100].
	Coverage map[Category]float64 `json:"coverage"`

	Matched int `json:"matched"`
	Total   int `json:"total"`

	// FallbackMode is true whenever the fallback pattern set produced this
	// distribution. It must never be absorbed into a normal-looking result.
	FallbackMode   bool `json:"fallback_mode"`
	ActivePatterns int  `json:"active_patterns"`
}

// Distribution classifies each phrase and returns the aggregate coverage.
// An empty phrase list yields an all-zero distribution, not an error.
func (c *Classifier) Distribution(phrases []string) Distribution {
	d := Distribution{
		Counts:         make(map[Category]int, len(Categories)),
		Coverage:       make(map[Category]float64, len(Categories)),
		Total:          len(phrases),
		FallbackMode:   c.FallbackMode(),
		ActivePatterns: len(c.patterns),
	}
	for _, cat := range Categories {
		d.Counts[cat] = 0
		d.Coverage[cat] = 0
	}

	for _, phrase := range phrases {
		if cat, ok := c.Match(phrase); ok {
			d.Counts[cat]++
			d.Matched++
		}
	}

	if d.Total > 0 {
		for cat, n := range d.Counts {
			d.Coverage[cat] = float64(n) / float64(d.Total) * 100
		}
	}

	if d.FallbackMode {
		logging.Debugf("Intent distribution computed in fallback mode (%d patterns active)", len(c.patterns))
	}
	return d
}

// Footprint summarizes the discovery-footprint bucketing of phrases. The
// bucketing uses exactly the same pattern source as Distribution so the two
// metrics can never diverge on fallback state.
type Footprint struct {
	Counts       map[Bucket]int `json:"counts"`
	Total        int            `json:"total"`
	FallbackMode bool           `json:"fallback_mode"`
}

// Footprint buckets each phrase into learning/outcome/brand/noise.
func (c *Classifier) Footprint(phrases []string) Footprint {
	f := Footprint{
		Counts:       make(map[Bucket]int, len(Buckets)),
		Total:        len(phrases),
		FallbackMode: c.FallbackMode(),
	}
	for _, b := range Buckets {
		f.Counts[b] = 0
	}

	for _, phrase := range phrases {
		if cat, ok := c.Match(phrase); ok {
			f.Counts[bucketFor(cat)]++
		} else {
			f.Counts[BucketNoise]++
		}
	}
	return f
}
