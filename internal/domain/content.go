package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for ContentItem
var (
	ErrEmptyContentID    = errors.New("content ID cannot be empty")
	ErrEmptyContentText  = errors.New("content text cannot be empty")
	ErrInvalidGradeLevel = errors.New("grade level must be a finite number")
)

// ContentItem is an ingested text passage with a precomputed readability
// grade. The grade may be negative for very short or simple text. Items are
// immutable once ingested.
type ContentItem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	GradeLevel float64   `json:"grade_level"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewContentItem creates a ContentItem with a fresh ID.
func NewContentItem(title, text string, gradeLevel float64) (*ContentItem, error) {
	item := &ContentItem{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(title),
		Text:       text,
		GradeLevel: gradeLevel,
		CreatedAt:  time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ContentItem has valid data.
func (c *ContentItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyContentID
	}

	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyContentText
	}

	if math.IsNaN(c.GradeLevel) || math.IsInf(c.GradeLevel, 0) {
		return ErrInvalidGradeLevel
	}

	return nil
}
