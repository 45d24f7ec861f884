// Package intent maps listing tokens and phrases to search-intent categories
// using pattern sets supplied by the rule store, with a fixed in-process
// fallback set for when the store is unreachable. The active pattern source
// is tracked explicitly and carried on every result so degraded
// classifications are never mistaken for full-pattern ones.
package intent

// Category is a search-intent category.
type Category string

const (
	Informational Category = "informational"
	Commercial    Category = "commercial"
	Transactional Category = "transactional"
	Navigational  Category = "navigational"
)

// Categories lists all intent categories in reporting order.
var Categories = []Category{Informational, Commercial, Transactional, Navigational}

// Pattern maps a list of match terms to an intent category for a scope.
type Pattern struct {
	Scope    string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	Category Category `yaml:"category" json:"category"`
	Match    []string `yaml:"match" json:"match"`
}

// Bucket is a discovery-footprint class for combos.
type Bucket string

const (
	BucketLearning Bucket = "learning"
	BucketOutcome  Bucket = "outcome"
	BucketBrand    Bucket = "brand"
	BucketNoise    Bucket = "noise"
)

// Buckets lists all footprint buckets in reporting order.
var Buckets = []Bucket{BucketLearning, BucketOutcome, BucketBrand, BucketNoise}

// bucketFor maps an intent category onto its discovery-footprint bucket.
// Unmatched phrases land in BucketNoise at the call site.
func bucketFor(cat Category) Bucket {
	switch cat {
	case Informational:
		return BucketLearning
	case Commercial, Transactional:
		return BucketOutcome
	case Navigational:
		return BucketBrand
	default:
		return BucketNoise
	}
}

// FallbackPatterns is the fixed in-process pattern set used when the rule
// store cannot supply patterns. Kept deliberately small; results produced
// from it always carry FallbackMode=true.
func FallbackPatterns() []Pattern {
	return []Pattern{
		{Category: Informational, Match: []string{"learn", "how to", "guide", "tutorial", "tips"}},
		{Category: Informational, Match: []string{"course", "lessons", "practice"}},
		{Category: Commercial, Match: []string{"tracker", "planner", "manager", "builder"}},
		{Category: Commercial, Match: []string{"compare", "review", "pro"}},
		{Category: Transactional, Match: []string{"buy", "order", "book", "subscribe"}},
		{Category: Transactional, Match: []string{"download", "install", "sign up"}},
		{Category: Navigational, Match: []string{"app", "official", "login"}},
		{Category: Navigational, Match: []string{"account", "portal"}},
	}
}
