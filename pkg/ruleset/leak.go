package ruleset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/asolytics/metascore/pkg/observability/metrics"
)

// leakDetector flags vocabulary characteristic of one vertical appearing in
// another vertical's merged configuration. Leaks are advisory: they signal a
// misconfigured override document, never block scoring.
type leakDetector struct {
	// markerOwner maps a marker token to the vertical it belongs to.
	markerOwner map[string]string
}

func newLeakDetector(verticalMarkers map[string][]string) *leakDetector {
	d := &leakDetector{markerOwner: make(map[string]string)}
	for vertical, markers := range verticalMarkers {
		for _, marker := range markers {
			d.markerOwner[strings.ToLower(marker)] = vertical
		}
	}
	return d
}

// scan appends a warning for every foreign-vertical marker found in the
// merged token relevance map or intent pattern terms.
func (d *leakDetector) scan(rs *MergedRuleSet) {
	if rs.Scope.Vertical == "" || len(d.markerOwner) == 0 {
		return
	}

	leaks := make(map[string]string)

	for token := range rs.TokenRelevance {
		if owner, ok := d.markerOwner[strings.ToLower(token)]; ok && owner != rs.Scope.Vertical {
			leaks[token] = owner
		}
	}
	for _, p := range rs.IntentPatterns {
		for _, term := range p.Match {
			if owner, ok := d.markerOwner[strings.ToLower(term)]; ok && owner != rs.Scope.Vertical {
				leaks[term] = owner
			}
		}
	}

	if len(leaks) == 0 {
		return
	}

	// Deterministic warning order regardless of map iteration.
	tokens := make([]string, 0, len(leaks))
	for token := range leaks {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	for _, token := range tokens {
		metrics.LeakWarnings.WithLabelValues(rs.Scope.Vertical).Inc()
		rs.Warnings = append(rs.Warnings, fmt.Sprintf(
			"possible cross-vertical leak: token %q belongs to vertical %q but appears in %q configuration",
			token, leaks[token], rs.Scope.Vertical))
	}
}
