package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gopkg.in/yaml.v3"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/intent"
)

var _ = Describe("Engine config YAML", func() {
	It("should unmarshal the base rule set document", func() {
		yamlContent := `
base_ruleset:
  token_relevance:
    workout: 0.9
    tracker: 0.8
  kpi_multipliers:
    combo_density: 1.2
  thresholds:
    unique_keywords.min_pass: 3
  templates:
    unique_keywords: "Add keywords to %s"
  intent_patterns:
    - category: informational
      match: ["learn", "how to"]
  vertical_markers:
    finance: ["loan", "invest"]
`
		var cfg config.EngineConfig
		Expect(yaml.Unmarshal([]byte(yamlContent), &cfg)).To(Succeed())

		Expect(cfg.Base.TokenRelevance).To(HaveKeyWithValue("workout", 0.9))
		Expect(cfg.Base.KPIMultipliers).To(HaveKeyWithValue("combo_density", 1.2))
		Expect(cfg.Base.Thresholds).To(HaveKeyWithValue("unique_keywords.min_pass", 3.0))
		Expect(cfg.Base.IntentPatterns).To(HaveLen(1))
		Expect(cfg.Base.IntentPatterns[0].Category).To(Equal(intent.Informational))
		Expect(cfg.Base.IntentPatterns[0].Match).To(ConsistOf("learn", "how to"))
		Expect(cfg.Base.VerticalMarkers).To(HaveKey("finance"))
	})

	It("should unmarshal formulas and families", func() {
		yamlContent := `
kpi_families:
  - name: keyword
    weight: 0.5
  - name: combo
    weight: 0.5
formulas:
  - name: overall
    terms:
      - source: title
        weight: 0.65
      - source: subtitle
        weight: 0.35
`
		var cfg config.EngineConfig
		Expect(yaml.Unmarshal([]byte(yamlContent), &cfg)).To(Succeed())
		Expect(cfg.Validate()).To(Succeed())

		Expect(cfg.Formulas).To(HaveLen(1))
		Expect(cfg.Formulas[0].WeightSum()).To(BeNumerically("~", 1.0, 1e-9))
	})
})

var _ = Describe("Config validation", func() {
	It("rejects formula weights that do not sum to 1.0", func() {
		cfg := config.Default()
		cfg.Formulas[0].Terms[0].Weight = 0.7
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects family weights that do not sum to 1.0", func() {
		cfg := config.Default()
		cfg.Families[0].Weight += 0.1
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects base token relevance outside [0,1]", func() {
		cfg := config.Default()
		cfg.Base.TokenRelevance = map[string]float64{"workout": 1.5}
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("accepts the shipped defaults", func() {
		cfg := config.Default()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.PlatformLimits.Title).To(Equal(30))
		Expect(cfg.Cache.TTLDuration().Minutes()).To(BeNumerically("==", 5))
	})
})
