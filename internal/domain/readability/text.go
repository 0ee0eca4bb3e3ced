// Package readability scores text for difficulty and for how much of it a
// learner already knows. Tokenization is regex based: a word is a maximal run
// of letters, digits or underscores, and text is case-folded first.
package readability

import (
	"regexp"
	"strings"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// Words returns the lowercased word tokens of text in order.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// SentenceCount returns the number of non-blank fragments between runs of
// terminal punctuation. It is never less than 1.
func SentenceCount(text string) int {
	count := 0
	for _, fragment := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(fragment) != "" {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

const vowels = "aeiouy"

// Syllables estimates the syllable count of a single word: runs of vowels,
// minus one for a trailing "e" when more than one run was found. The result
// is never less than 1.
func Syllables(word string) int {
	word = strings.ToLower(word)

	count := 0
	inVowelRun := false
	for _, r := range word {
		if strings.ContainsRune(vowels, r) {
			if !inVowelRun {
				count++
			}
			inVowelRun = true
			continue
		}
		inVowelRun = false
	}

	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count < 1 {
		return 1
	}
	return count
}
