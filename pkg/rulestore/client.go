// Package rulestore defines the read contract to the external rule store
// and its concrete clients. The store holds per-scope override documents and
// intent patterns; it may be unavailable at any time, and every caller in
// the engine is expected to degrade gracefully when it is.
package rulestore

import (
	"context"
	"errors"

	"github.com/asolytics/metascore/pkg/intent"
)

var (
	// ErrNotFound means the scope has no override document. Callers inherit
	// the parent scope; this is not a failure.
	ErrNotFound = errors.New("rulestore: no document for scope")

	// ErrUnavailable means the store could not be reached. Callers fall back
	// to stale cache or base configuration.
	ErrUnavailable = errors.New("rulestore: store unavailable")
)

// OverrideDocument is one scope's contribution to the merged rule set.
// Scopes are addressed as "vertical:<name>", "market:<code>" or
// "client:<id>".
type OverrideDocument struct {
	Scope string `json:"scope" yaml:"scope"`

	// TokenRelevance maps tokens to a relevance weight in [0,1].
	TokenRelevance map[string]float64 `json:"token_relevance,omitempty" yaml:"token_relevance,omitempty"`

	// KPIMultipliers maps KPI ids to a weight multiplier. Values outside
	// [0.5, 2.0] are clamped at merge time, never here.
	KPIMultipliers map[string]float64 `json:"kpi_multipliers,omitempty" yaml:"kpi_multipliers,omitempty"`

	// Thresholds overrides rule threshold values by dotted key.
	Thresholds map[string]float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// DiscoveryThresholds overrides discovery-footprint thresholds.
	DiscoveryThresholds map[string]float64 `json:"discovery_thresholds,omitempty" yaml:"discovery_thresholds,omitempty"`

	// Templates overrides recommendation templates by rule or KPI id. A
	// scope that supplies templates replaces the inherited list wholesale.
	Templates map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`

	// IntentPatterns overrides the intent pattern set for the scope.
	IntentPatterns []intent.Pattern `json:"intent_patterns,omitempty" yaml:"intent_patterns,omitempty"`
}

// Client is the read-only contract the engine consumes. Implementations
// must return ErrNotFound for absent scopes and wrap transport failures in
// ErrUnavailable.
type Client interface {
	// GetOverrides fetches the override document for a scope.
	GetOverrides(ctx context.Context, scope string) (*OverrideDocument, error)

	// GetIntentPatterns fetches the intent pattern set for a scope.
	GetIntentPatterns(ctx context.Context, scope string) ([]intent.Pattern, error)
}
