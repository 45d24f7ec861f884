package textanalysis

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple title",
			text: "FitTrack: Workout & Calorie Tracker",
			want: []string{"fittrack", "workout", "calorie", "tracker"},
		},
		{
			name: "digits kept",
			text: "Learn Spanish in 30 days",
			want: []string{"learn", "spanish", "in", "30", "days"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "!!! --- ...",
			want: nil,
		},
		{
			name: "unicode casing",
			text: "Éducation FRANÇAISE",
			want: []string{"éducation", "française"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	text := "Track workouts, meals & sleep — all in one place!"
	first := Tokenize(text)
	for i := 0; i < 50; i++ {
		if got := Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := Analyze("")
	if a.WordCount != 0 || a.SentenceCount != 0 || a.NoiseRatio != 0 || a.ReadingEase != 0 {
		t.Errorf("empty text should produce zero analysis, got %+v", a)
	}
}

func TestAnalyzeStopwordAndNoiseCounts(t *testing.T) {
	a := Analyze("the best app for you")
	// "the", "for", "you" are stopwords; "best" is filler.
	if a.StopwordCount != 3 {
		t.Errorf("StopwordCount = %d, want 3", a.StopwordCount)
	}
	if a.NoiseCount != 4 {
		t.Errorf("NoiseCount = %d, want 4", a.NoiseCount)
	}
	if want := 4.0 / 5.0; a.NoiseRatio != want {
		t.Errorf("NoiseRatio = %f, want %f", a.NoiseRatio, want)
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"One. Two! Three?", 3},
		{"Ends without terminator", 1},
		{"Ellipsis wins... right", 2},
		{"", 0},
		{"...", 0},
	}
	for _, tt := range tests {
		if got := countSentences(tt.text); got != tt.want {
			t.Errorf("countSentences(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"track", 1},
		{"workout", 2},
		{"calorie", 3},
		{"a", 1},
		{"rhythm", 1},
	}
	for _, tt := range tests {
		if got := countSyllables(tt.word); got != tt.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestReadingEaseBounds(t *testing.T) {
	// Very long single sentence with complex words should clamp at 0, short
	// simple text should stay within [0,100].
	texts := []string{
		"Comprehensive multidimensional internationalization orchestration infrastructure considerations notwithstanding operational industrialization",
		"Run. Jump. Play.",
		"Track your daily workouts with ease.",
	}
	for _, text := range texts {
		a := Analyze(text)
		if a.ReadingEase < 0 || a.ReadingEase > 100 {
			t.Errorf("ReadingEase(%q) = %f, out of [0,100]", text, a.ReadingEase)
		}
	}
}

func TestNormalizePhrase(t *testing.T) {
	if got := NormalizePhrase([]string{"calorie", "tracker"}); got != "calorie tracker" {
		t.Errorf("NormalizePhrase = %q", got)
	}
}
