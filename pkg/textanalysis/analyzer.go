// Package textanalysis implements the deterministic text primitives the
// scoring pipeline is built on: tokenization, stopword statistics, sentence
// stats and a heuristic readability estimate. Everything here is a pure
// function of its input; identical text always produces identical output.
package textanalysis

import (
	"strings"
	"unicode"
)

// Analysis is the derived view of one piece of listing text.
type Analysis struct {
	Tokens        []string `json:"tokens"`
	StopwordCount int      `json:"stopword_count"`
	NoiseCount    int      `json:"noise_count"`
	CharCount     int      `json:"char_count"`
	WordCount     int      `json:"word_count"`
	SentenceCount int      `json:"sentence_count"`
	SyllableCount int      `json:"syllable_count"`

	// AvgSentenceLength is words per sentence, 0 when there are no sentences.
	AvgSentenceLength float64 `json:"avg_sentence_length"`

	// ReadingEase is a Flesch-style score clamped to [0,100]. Syllables are
	// estimated by vowel-group counting, so this is approximate by design.
	ReadingEase float64 `json:"reading_ease"`

	// NoiseRatio is noise tokens (stopwords + filler) over total tokens.
	NoiseRatio float64 `json:"noise_ratio"`
}

// Tokenize splits text into lowercase word tokens. Letters and digits are
// kept, everything else separates tokens. Casing and punctuation are
// normalized here and nowhere else so tokenization stays consistent across
// the pipeline.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// NormalizePhrase joins tokens into the canonical lowercase form used as a
// deduplication key for combos.
func NormalizePhrase(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Analyze computes the full analysis for one text. Empty or whitespace-only
// text yields a zero-valued Analysis, not an error.
func Analyze(text string) Analysis {
	tokens := Tokenize(text)

	a := Analysis{
		Tokens:    tokens,
		CharCount: len([]rune(text)),
		WordCount: len(tokens),
	}

	for _, tok := range tokens {
		if IsStopword(tok) {
			a.StopwordCount++
		}
		if IsNoise(tok) {
			a.NoiseCount++
		}
		a.SyllableCount += countSyllables(tok)
	}

	a.SentenceCount = countSentences(text)
	if a.SentenceCount > 0 {
		a.AvgSentenceLength = float64(a.WordCount) / float64(a.SentenceCount)
	}
	if a.WordCount > 0 {
		a.NoiseRatio = float64(a.NoiseCount) / float64(a.WordCount)
		a.ReadingEase = readingEase(a.WordCount, a.SentenceCount, a.SyllableCount)
	}

	return a
}

// countSentences counts terminal punctuation runs. A trailing run of words
// without a terminator still counts as a sentence.
func countSentences(text string) int {
	count := 0
	inTerminator := false
	pendingWords := false

	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			if !inTerminator && pendingWords {
				count++
				pendingWords = false
			}
			inTerminator = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			pendingWords = true
			inTerminator = false
		default:
			inTerminator = false
		}
	}
	if pendingWords {
		count++
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups. A trailing
// silent 'e' is discounted, and every word has at least one syllable.
func countSyllables(word string) int {
	if word == "" {
		return 0
	}

	isVowel := func(r rune) bool {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			return true
		}
		return false
	}

	count := 0
	prevVowel := false
	runes := []rune(word)
	for _, r := range runes {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if len(runes) > 1 && runes[len(runes)-1] == 'e' && !isVowel(runes[len(runes)-2]) {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

// readingEase computes the Flesch reading-ease formula clamped to [0,100].
func readingEase(words, sentences, syllables int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	score := 206.835 -
		1.015*(float64(words)/float64(sentences)) -
		84.6*(float64(syllables)/float64(words))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
