// Package recommend selects what a learner should study next: a single
// content item matched to their level or vocabulary, or a ranked list of
// videos with few unfamiliar words.
package recommend

import (
	"math"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/domain/readability"
)

// LevelStep is how far above the learner's level a recommendation aims.
const LevelStep = 1.0

// ByLevel returns the catalog item whose grade is closest to level+LevelStep.
// Ties go to the earliest item in catalog order. It returns nil for an empty
// catalog. level must be finite.
func ByLevel(level float64, catalog []domain.ContentItem) *domain.ContentItem {
	if len(catalog) == 0 {
		return nil
	}

	target := level + LevelStep
	best := 0
	bestDiff := math.Abs(catalog[0].GradeLevel - target)
	for i := 1; i < len(catalog); i++ {
		diff := math.Abs(catalog[i].GradeLevel - target)
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	item := catalog[best]
	return &item
}

// CoverageMatch is a content item with its known-word coverage.
type CoverageMatch struct {
	Item     domain.ContentItem
	Coverage float64
}

// ByCoverage returns the catalog item with the highest share of known words.
// The first item always beats the initial score of -1, so a catalog with zero
// coverage everywhere still yields its first item. Later items must score
// strictly higher to replace the current best. It returns nil for an empty
// catalog.
func ByCoverage(known domain.KnownWordSet, catalog []domain.ContentItem) *CoverageMatch {
	var best *CoverageMatch
	bestScore := -1.0

	for _, item := range catalog {
		score := readability.Coverage(item.Text, known)
		if score > bestScore {
			best = &CoverageMatch{Item: item, Coverage: score}
			bestScore = score
		}
	}

	return best
}
