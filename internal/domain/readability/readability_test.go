package readability

import (
	"testing"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Hello world.", []string{"hello", "world"}},
		{"apostrophe splits", "Don't stop", []string{"don", "t", "stop"}},
		{"digits and underscores", "route_66 is 2 lanes", []string{"route_66", "is", "2", "lanes"}},
		{"unicode letters", "Café naïve", []string{"café", "naïve"}},
		{"punctuation only", "...!?", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.text))
		})
	}
}

func TestSentenceCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"Hello world.", 1},
		{"Wait... what?! Yes", 3},
		{"One. Two. Three.", 3},
		{"no terminal punctuation", 1},
		{"!!!", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, SentenceCount(tt.text))
		})
	}
}

func TestSyllables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word string
		want int
	}{
		{"hello", 2},
		{"world", 1},
		{"cake", 1},
		{"agree", 1},
		{"the", 1},
		{"queue", 1},
		{"beautiful", 3},
		{"rhythm", 1},
		{"bcd", 1},
		{"Readability", 5},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Syllables(tt.word))
		})
	}
}

func TestGradeLevel(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.89, GradeLevel("Hello world."), 1e-9)
	assert.InDelta(t, -2.62, GradeLevel("The cat sat."), 1e-9)

	assert.Equal(t, NoGrade, GradeLevel(""))
	assert.Equal(t, NoGrade, GradeLevel("... !? ..."))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	stats := Analyze("Hello world. The cat sat!")
	assert.Equal(t, Stats{Words: 5, Sentences: 2, Syllables: 6}, stats)
	assert.InDelta(t, 0.39*5/2+11.8*6/5-15.59, stats.Grade(), 1e-9)

	assert.Equal(t, NoGrade, Stats{Sentences: 1}.Grade())
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	known := domain.NewKnownWordSet("the", "CAT")

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"half known", "The cat sat on the mat", 0.5},
		{"case folded", "THE Cat", 1.0},
		{"none known", "dogs run", 0},
		{"empty text", "", 0},
		{"punctuation only", "?!", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Coverage(tt.text, known), 1e-9)
		})
	}

	assert.Equal(t, 0.0, Coverage("anything at all", domain.NewKnownWordSet()))
}
