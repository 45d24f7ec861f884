// Package audit runs the full metadata audit pipeline: text analysis, combo
// extraction, intent classification, element scoring, KPI computation,
// formula composition and recommendations, all against the merged rule set
// for the listing's scope. One call is one sequential pass; concurrency
// happens across calls, with the rule-set cache as the only shared state.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/asolytics/metascore/pkg/combos"
	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/elements"
	"github.com/asolytics/metascore/pkg/formula"
	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/kpi"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/observability/metrics"
	"github.com/asolytics/metascore/pkg/recommend"
	"github.com/asolytics/metascore/pkg/ruleset"
	"github.com/asolytics/metascore/pkg/rulestore"
	"github.com/asolytics/metascore/pkg/textanalysis"
)

// ErrInvalidListing marks malformed input rejected at the call boundary.
// Everything past this check degrades instead of failing.
var ErrInvalidListing = errors.New("invalid listing")

// Listing is the metadata bundle supplied by the import layer. The engine
// never fetches listing data itself.
type Listing struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Locale      string `json:"locale"`
	Category    string `json:"category"`
	AppScopeID  string `json:"app_scope_id"`
}

// Scope derives the rule inheritance scope from the listing.
func (l Listing) Scope() ruleset.Scope {
	return ruleset.Scope{
		Vertical: l.Category,
		Market:   l.Locale,
		Client:   l.AppScopeID,
	}
}

// UnifiedAuditResult is the complete output of one audit call. The caller
// owns it; the engine keeps no reference.
type UnifiedAuditResult struct {
	ID          string        `json:"id"`
	Scope       ruleset.Scope `json:"scope"`
	GeneratedAt time.Time     `json:"generated_at"`

	Overall    float64         `json:"overall"`
	Conversion float64         `json:"conversion"`
	Scores     []formula.Score `json:"scores"`

	Elements  []elements.ElementScoreResult `json:"elements"`
	Combos    []combos.Record               `json:"combos"`
	Intent    intent.Distribution           `json:"intent"`
	Footprint intent.Footprint              `json:"footprint"`
	KPI       kpi.Result                    `json:"kpi"`

	Recommendations []recommend.Recommendation `json:"recommendations"`

	// RuleSetSource and Warnings surface degraded-mode diagnostics from the
	// merged rule set the audit ran against.
	RuleSetSource ruleset.Source `json:"ruleset_source"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// Engine is the audit pipeline. It is immutable after construction and safe
// for concurrent use.
type Engine struct {
	cfg         *config.EngineConfig
	cache       *ruleset.Cache
	registry    *elements.Registry
	kpis        *kpi.Engine
	composer    *formula.Composer
	recommender *recommend.Engine
	fallback    *intent.Classifier
}

// NewEngine builds an audit engine over the given configuration and rule
// store. A nil store is allowed; every audit then runs on base-only rules.
func NewEngine(cfg *config.EngineConfig, store rulestore.Client) (*Engine, error) {
	composer, err := formula.NewComposer(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid formula configuration: %w", err)
	}
	return &Engine{
		cfg:         cfg,
		cache:       ruleset.NewCache(cfg, store),
		registry:    elements.NewRegistry(),
		kpis:        kpi.NewEngine(cfg),
		composer:    composer,
		recommender: recommend.NewEngine(),
		fallback:    intent.NewFallbackClassifier(),
	}, nil
}

// InvalidateScope drops the cached rule set for a scope. Callers signal this
// when an override document changes.
func (e *Engine) InvalidateScope(scope ruleset.Scope) {
	e.cache.Invalidate(scope)
}

// Audit runs the full pipeline for one listing. The only error it returns
// is ErrInvalidListing for malformed input; every runtime problem past that
// point degrades and is reported through the result's diagnostics.
func (e *Engine) Audit(ctx context.Context, listing Listing) (*UnifiedAuditResult, error) {
	start := time.Now()

	if err := validate(listing); err != nil {
		metrics.RecordAudit("invalid_input", time.Since(start).Seconds())
		return nil, err
	}

	scope := listing.Scope()
	rules := e.cache.ActiveRuleSet(ctx, scope)

	limits := e.cfg.PlatformLimits
	title := elements.New(elements.KindTitle, listing.Title, limits.Title)
	subtitle := elements.New(elements.KindSubtitle, listing.Subtitle, limits.Subtitle)
	description := elements.New(elements.KindDescription, listing.Description, limits.Description)

	records := combos.Generate([]combos.ElementTokens{
		{Element: string(elements.KindTitle), Tokens: title.Analysis.Tokens},
		{Element: string(elements.KindSubtitle), Tokens: subtitle.Analysis.Tokens},
		{Element: string(elements.KindDescription), Tokens: description.Analysis.Tokens},
	})

	classifier := e.classifierFor(rules)
	allTokens := gatherTokens(title, subtitle, description)
	phrases := combos.Phrases(records)

	// The distribution covers tokens and combos: multi-word pattern terms
	// ("how to", "sign up") can only ever match at the phrase level.
	signals := make([]string, 0, len(allTokens)+len(phrases))
	signals = append(signals, allTokens...)
	signals = append(signals, phrases...)
	dist := classifier.Distribution(signals)
	footprint := classifier.Footprint(phrases)

	elementResults := []elements.ElementScoreResult{
		e.registry.Evaluate(title, nil, records, rules),
		e.registry.Evaluate(subtitle, title, records, rules),
		e.registry.Evaluate(description, title, records, rules),
	}

	kpiResult := e.kpis.Evaluate(kpi.Primitives{
		Tokens:           allTokens,
		Combos:           records,
		Intent:           dist,
		Footprint:        footprint,
		TitleUsagePct:    title.UsagePct(),
		SubtitleUsagePct: subtitle.UsagePct(),
		NoiseRatio:       noiseRatio(allTokens),
	}, rules)

	scores := e.composer.Compose(formula.Inputs{
		string(elements.KindTitle):       elementResults[0].Score,
		string(elements.KindSubtitle):    elementResults[1].Score,
		string(elements.KindDescription): elementResults[2].Score,
	})
	overall, _ := formula.ByName(scores, "overall")
	conversion, _ := formula.ByName(scores, "conversion")

	recommendations := e.recommender.Build(recommend.Input{
		Elements:  elementResults,
		KPI:       kpiResult,
		Footprint: footprint,
		Rules:     rules,
	})

	result := &UnifiedAuditResult{
		ID:              uuid.NewString(),
		Scope:           scope,
		GeneratedAt:     time.Now().UTC(),
		Overall:         overall.Value,
		Conversion:      conversion.Value,
		Scores:          scores,
		Elements:        elementResults,
		Combos:          records,
		Intent:          dist,
		Footprint:       footprint,
		KPI:             kpiResult,
		Recommendations: recommendations,
		RuleSetSource:   rules.Source,
		Warnings:        rules.Warnings,
	}

	metrics.RecordAudit("success", time.Since(start).Seconds())
	logging.Infof("audit %s scope=%s overall=%.1f source=%s recommendations=%d",
		result.ID, scope.Key(), result.Overall, rules.Source, len(recommendations))
	return result, nil
}

// classifierFor compiles the scope's intent patterns, dropping to the fixed
// fallback set when none are available or compilation fails.
func (e *Engine) classifierFor(rules *ruleset.MergedRuleSet) *intent.Classifier {
	if len(rules.IntentPatterns) == 0 {
		metrics.FallbackActivations.WithLabelValues("intent_patterns").Inc()
		return e.fallback
	}
	c, err := intent.NewClassifier(rules.IntentPatterns)
	if err != nil {
		logging.Warnf("intent patterns for scope %s failed to compile, using fallback set: %v",
			rules.Scope.Key(), err)
		metrics.FallbackActivations.WithLabelValues("intent_patterns").Inc()
		return e.fallback
	}
	return c
}

// validate rejects malformed text at the boundary. Empty elements are valid
// and score as empty; only non-UTF-8 input is fatal.
func validate(listing Listing) error {
	for _, f := range []struct{ name, text string }{
		{"title", listing.Title},
		{"subtitle", listing.Subtitle},
		{"description", listing.Description},
	} {
		if !utf8.ValidString(f.text) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidListing, f.name)
		}
	}
	return nil
}

func gatherTokens(els ...*elements.Element) []string {
	var out []string
	for _, el := range els {
		out = append(out, el.Analysis.Tokens...)
	}
	return out
}

func noiseRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	noise := 0
	for _, tok := range tokens {
		if textanalysis.IsNoise(tok) {
			noise++
		}
	}
	return float64(noise) / float64(len(tokens))
}
