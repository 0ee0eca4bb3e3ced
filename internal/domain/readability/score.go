package readability

import "github.com/phrazzld/wordpath-api/internal/domain"

// NoGrade is returned by GradeLevel for text without any word tokens, where
// the Flesch-Kincaid formula is undefined.
const NoGrade = 0.0

// Stats holds the raw counts behind a grade computation.
type Stats struct {
	Words     int
	Sentences int
	Syllables int
}

// Analyze counts words, sentences and syllables in text.
func Analyze(text string) Stats {
	words := Words(text)
	syllables := 0
	for _, w := range words {
		syllables += Syllables(w)
	}
	return Stats{
		Words:     len(words),
		Sentences: SentenceCount(text),
		Syllables: syllables,
	}
}

// Grade applies the Flesch-Kincaid grade formula to s, returning NoGrade
// when s has no words.
func (s Stats) Grade() float64 {
	if s.Words == 0 {
		return NoGrade
	}
	words := float64(s.Words)
	return 0.39*words/float64(s.Sentences) + 11.8*float64(s.Syllables)/words - 15.59
}

// GradeLevel estimates the US school grade needed to read text. Very short
// or simple text can score below zero.
func GradeLevel(text string) float64 {
	return Analyze(text).Grade()
}

// Coverage returns the fraction of word tokens in text that appear in known.
// Text without tokens has coverage 0.
func Coverage(text string, known domain.KnownWordSet) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}

	hits := 0
	for _, w := range words {
		if known.Contains(w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}
