// Package config defines the engine configuration document and its loader.
// The config carries the base rule-set layer (always present, lowest
// precedence in the merge), the static scoring calibration, KPI family
// weights and the declared score formulas.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/asolytics/metascore/pkg/intent"
)

// EngineConfig is the root configuration document.
type EngineConfig struct {
	Cache          CacheConfig    `yaml:"cache" json:"cache"`
	PlatformLimits PlatformLimits `yaml:"platform_limits" json:"platform_limits"`

	// Base is the base rule-set layer. Vertical, market and client override
	// documents from the rule store merge on top of it.
	Base BaseRuleSet `yaml:"base_ruleset" json:"base_ruleset"`

	// Families declares KPI family weights. Weights must sum to 1.0.
	Families []FamilyWeight `yaml:"kpi_families" json:"kpi_families"`

	// Formulas declares the weighted score formulas. Each formula's term
	// weights must sum to 1.0.
	Formulas []Formula `yaml:"formulas" json:"formulas"`
}

// CacheConfig configures the merged rule-set cache.
type CacheConfig struct {
	// TTL is the cache entry lifetime, e.g. "5m".
	TTL string `yaml:"ttl,omitempty" json:"ttl,omitempty"`

	// FetchTimeout bounds each rule store fetch, e.g. "300ms".
	FetchTimeout string `yaml:"fetch_timeout,omitempty" json:"fetch_timeout,omitempty"`

	// Retries is the bounded retry count for store fetches.
	Retries int `yaml:"retries,omitempty" json:"retries,omitempty"`
}

// TTLDuration returns the parsed TTL, defaulting to 5 minutes.
func (c CacheConfig) TTLDuration() time.Duration {
	if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// FetchTimeoutDuration returns the parsed fetch timeout, defaulting to 300ms.
func (c CacheConfig) FetchTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.FetchTimeout); err == nil && d > 0 {
		return d
	}
	return 300 * time.Millisecond
}

// PlatformLimits holds per-element character limits. Zero values fall back
// to the iOS App Store defaults.
type PlatformLimits struct {
	Title       int `yaml:"title,omitempty" json:"title,omitempty"`
	Subtitle    int `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description int `yaml:"description,omitempty" json:"description,omitempty"`
}

func (p PlatformLimits) withDefaults() PlatformLimits {
	if p.Title <= 0 {
		p.Title = 30
	}
	if p.Subtitle <= 0 {
		p.Subtitle = 30
	}
	if p.Description <= 0 {
		p.Description = 4000
	}
	return p
}

// BaseRuleSet is the always-present lowest-precedence configuration layer.
type BaseRuleSet struct {
	TokenRelevance      map[string]float64 `yaml:"token_relevance,omitempty" json:"token_relevance,omitempty"`
	KPIMultipliers      map[string]float64 `yaml:"kpi_multipliers,omitempty" json:"kpi_multipliers,omitempty"`
	Thresholds          map[string]float64 `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	DiscoveryThresholds map[string]float64 `yaml:"discovery_thresholds,omitempty" json:"discovery_thresholds,omitempty"`
	Templates           map[string]string  `yaml:"templates,omitempty" json:"templates,omitempty"`
	IntentPatterns      []intent.Pattern   `yaml:"intent_patterns,omitempty" json:"intent_patterns,omitempty"`

	// VerticalMarkers maps each known vertical to vocabulary characteristic
	// of it. The leak detector flags markers of one vertical appearing in
	// another vertical's merged configuration.
	VerticalMarkers map[string][]string `yaml:"vertical_markers,omitempty" json:"vertical_markers,omitempty"`
}

// FamilyWeight declares one KPI family's aggregate weight.
type FamilyWeight struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Formula declares a weighted combination of element scores.
type Formula struct {
	Name  string `yaml:"name" json:"name"`
	Terms []Term `yaml:"terms" json:"terms"`
}

// Term is one weighted input of a formula.
type Term struct {
	Source string  `yaml:"source" json:"source"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// WeightSum returns the sum of the formula's term weights.
func (f Formula) WeightSum() float64 {
	sum := 0.0
	for _, t := range f.Terms {
		sum += t.Weight
	}
	return sum
}

// weightTolerance is the allowed deviation from 1.0 for declared weights.
const weightTolerance = 1e-9

// Validate checks the structural invariants of the configuration.
func (c *EngineConfig) Validate() error {
	for _, f := range c.Formulas {
		if len(f.Terms) == 0 {
			return fmt.Errorf("formula %q has no terms", f.Name)
		}
		if sum := f.WeightSum(); math.Abs(sum-1.0) > weightTolerance {
			return fmt.Errorf("formula %q weights sum to %v, want 1.0", f.Name, sum)
		}
	}

	if len(c.Families) > 0 {
		sum := 0.0
		for _, fam := range c.Families {
			if fam.Weight < 0 {
				return fmt.Errorf("kpi family %q has negative weight", fam.Name)
			}
			sum += fam.Weight
		}
		if math.Abs(sum-1.0) > weightTolerance {
			return fmt.Errorf("kpi family weights sum to %v, want 1.0", sum)
		}
	}

	for token, rel := range c.Base.TokenRelevance {
		if rel < 0 || rel > 1 {
			return fmt.Errorf("base token relevance for %q is %v, want [0,1]", token, rel)
		}
	}

	for _, p := range c.Base.IntentPatterns {
		switch p.Category {
		case intent.Informational, intent.Commercial, intent.Transactional, intent.Navigational:
		default:
			return fmt.Errorf("base intent pattern has unsupported category %q", p.Category)
		}
		if len(p.Match) == 0 {
			return fmt.Errorf("base intent pattern for category %q has no match terms", p.Category)
		}
	}

	return nil
}

// applyDefaults fills unset sections from the shipped defaults.
func (c *EngineConfig) applyDefaults() {
	c.PlatformLimits = c.PlatformLimits.withDefaults()

	def := Default()
	if c.Base.Thresholds == nil {
		c.Base.Thresholds = def.Base.Thresholds
	}
	if c.Base.DiscoveryThresholds == nil {
		c.Base.DiscoveryThresholds = def.Base.DiscoveryThresholds
	}
	if c.Base.Templates == nil {
		c.Base.Templates = def.Base.Templates
	}
	if c.Base.VerticalMarkers == nil {
		c.Base.VerticalMarkers = def.Base.VerticalMarkers
	}
	if len(c.Families) == 0 {
		c.Families = def.Families
	}
	if len(c.Formulas) == 0 {
		c.Formulas = def.Formulas
	}
}
