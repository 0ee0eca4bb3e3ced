package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Word
var (
	ErrEmptyWordID   = errors.New("word ID cannot be empty")
	ErrEmptyWordText = errors.New("word text cannot be empty")
)

// Word is a vocabulary item. Text is stored normalized (trimmed and
// lowercased) and is unique across the vocabulary.
type Word struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeWord trims surrounding whitespace and lowercases text.
func NormalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// NewWord creates a Word with a fresh ID from raw text.
func NewWord(text string) (*Word, error) {
	word := &Word{
		ID:        uuid.New(),
		Text:      NormalizeWord(text),
		CreatedAt: time.Now().UTC(),
	}

	if err := word.Validate(); err != nil {
		return nil, err
	}

	return word, nil
}

// Validate checks if the Word has valid data.
func (w *Word) Validate() error {
	if w.ID == uuid.Nil {
		return ErrEmptyWordID
	}

	if w.Text == "" {
		return ErrEmptyWordText
	}

	return nil
}

// KnownWordSet is a learner-declared set of words, independent of mastery
// records. Members are normalized on insertion.
type KnownWordSet map[string]struct{}

// NewKnownWordSet builds a set from raw words, skipping blanks.
func NewKnownWordSet(words ...string) KnownWordSet {
	set := make(KnownWordSet, len(words))
	for _, w := range words {
		set.Add(w)
	}
	return set
}

// Add inserts a normalized word. Blank input is ignored.
func (s KnownWordSet) Add(word string) {
	normalized := NormalizeWord(word)
	if normalized == "" {
		return
	}
	s[normalized] = struct{}{}
}

// Contains reports whether the case-folded word is in the set.
func (s KnownWordSet) Contains(word string) bool {
	_, ok := s[NormalizeWord(word)]
	return ok
}

// Len returns the number of distinct words.
func (s KnownWordSet) Len() int {
	return len(s)
}
