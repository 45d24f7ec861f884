package config

// Threshold keys used by the element scoring registry and KPI engine. Every
// numeric calibration lives in the base rule-set document so per-scope
// overrides and recalibration are config changes, not code changes.
const (
	KeyCharUsageLowPct  = "character_usage.low_pct"
	KeyCharUsageMidPct  = "character_usage.mid_pct"
	KeyCharUsageHighPct = "character_usage.high_pct"

	KeyUniqueKeywordsMinPass       = "unique_keywords.min_pass"
	KeyUniqueKeywordsHighRelevance = "unique_keywords.high_relevance"

	KeyComboCoverageMinPass = "combo_coverage.min_pass"

	KeyNoiseModerateRatio = "noise_penalty.moderate_ratio"
	KeyNoiseHeavyRatio    = "noise_penalty.heavy_ratio"

	KeySubtitleOverlapRatio = "subtitle_complementarity.overlap_ratio"

	KeyReadabilityEasyMin = "readability.easy_min"

	KeyHookMinMatches = "hook_strength.min_matches"

	KeyDiscoveryMinOutcomeShare = "discovery.min_outcome_share"
	KeyDiscoveryMaxNoiseShare   = "discovery.max_noise_share"
)

// Default returns the shipped engine configuration. Calibration values are a
// tuned starting baseline, not a normative contract; deployments recalibrate
// through YAML.
func Default() *EngineConfig {
	return &EngineConfig{
		Cache: CacheConfig{
			TTL:          "5m",
			FetchTimeout: "300ms",
			Retries:      2,
		},
		PlatformLimits: PlatformLimits{
			Title:       30,
			Subtitle:    30,
			Description: 4000,
		},
		Base: BaseRuleSet{
			Thresholds: map[string]float64{
				KeyCharUsageLowPct:  50,
				KeyCharUsageMidPct:  70,
				KeyCharUsageHighPct: 90,

				KeyUniqueKeywordsMinPass:       2,
				KeyUniqueKeywordsHighRelevance: 0.5,

				KeyComboCoverageMinPass: 2,

				KeyNoiseModerateRatio: 0.30,
				KeyNoiseHeavyRatio:    0.50,

				KeySubtitleOverlapRatio: 0.40,

				KeyReadabilityEasyMin: 60,

				KeyHookMinMatches: 1,
			},
			DiscoveryThresholds: map[string]float64{
				KeyDiscoveryMinOutcomeShare: 0.20,
				KeyDiscoveryMaxNoiseShare:   0.50,
			},
			Templates: map[string]string{
				"character_usage":            "Use more of the available character limit: %s is at %.0f%% of %d characters.",
				"character_overflow":         "%s exceeds the platform limit and will be truncated; trim it below %d characters.",
				"unique_keywords":            "Add more unique high-relevance keywords to %s; only %d found.",
				"combo_coverage":             "%s produces %d keyword combinations; aim for at least %d multi-word phrases.",
				"noise_penalty":              "Reduce filler words in %s; %.0f%% of tokens carry no search value.",
				"subtitle_complementarity":   "Subtitle repeats %.0f%% of the title's tokens; use it for new keywords instead.",
				"subtitle_incremental_value": "Subtitle adds no high-value keywords beyond the title.",
				"readability":                "Description readability is low (%.0f); shorter sentences improve conversion.",
				"hook_strength":              "Description opens without a hook or call to action.",
				"intent_coverage":            "Listing text matches %d of 4 search-intent categories; broaden intent coverage.",
				"discovery_balance":          "Keyword strategy is unbalanced: %.0f%% of combos classify as noise.",
			},
			VerticalMarkers: map[string][]string{
				"finance":           {"loan", "invest", "banking", "credit", "budget", "stocks", "crypto"},
				"fitness":           {"workout", "calorie", "exercise", "gym", "cardio", "muscle"},
				"language_learning": {"spanish", "french", "vocabulary", "fluent", "grammar", "phrases"},
				"wellness":          {"meditation", "sleep", "mindfulness", "breathing"},
			},
		},
		Families: []FamilyWeight{
			{Name: "keyword", Weight: 0.30},
			{Name: "combo", Weight: 0.25},
			{Name: "intent", Weight: 0.25},
			{Name: "structure", Weight: 0.20},
		},
		Formulas: []Formula{
			{
				Name: "overall",
				Terms: []Term{
					{Source: "title", Weight: 0.65},
					{Source: "subtitle", Weight: 0.35},
				},
			},
			{
				// Description does not influence ranking; it is scored as a
				// standalone conversion signal.
				Name: "conversion",
				Terms: []Term{
					{Source: "description", Weight: 1.0},
				},
			},
		},
	}
}
