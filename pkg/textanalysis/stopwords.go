package textanalysis

// stopwords is the fixed English stopword set used for token filtering and
// noise statistics. The set is intentionally small and stable: changing it
// changes every downstream score.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "do": true, "for": true,
	"from": true, "get": true, "has": true, "have": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"our": true, "so": true, "that": true, "the": true, "their": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
	"you": true, "your": true,
}

// fillerWords are low-information marketing tokens counted toward the noise
// ratio alongside stopwords. They carry no search value in store listings.
var fillerWords = map[string]bool{
	"amazing": true, "awesome": true, "best": true, "great": true,
	"incredible": true, "new": true, "really": true, "simple": true,
	"top": true, "ultimate": true, "very": true, "world": true,
}

// IsStopword reports whether the lowercase token is in the stopword set.
func IsStopword(token string) bool {
	return stopwords[token]
}

// IsNoise reports whether the lowercase token is a stopword or filler word.
func IsNoise(token string) bool {
	return stopwords[token] || fillerWords[token]
}
