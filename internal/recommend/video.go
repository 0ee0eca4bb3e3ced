package recommend

import (
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/wordpath-api/internal/domain"
)

// Defaults for RankVideos
const (
	DefaultVideoLimit = 20
	DefaultMaxUnknown = 1
)

// Options bounds a video ranking.
type Options struct {
	// Limit caps the number of results. Zero returns nothing.
	Limit int
	// MaxUnknown is the largest unknown-word count a video may have.
	MaxUnknown int
}

// DefaultOptions returns the standard ranking bounds.
func DefaultOptions() Options {
	return Options{Limit: DefaultVideoLimit, MaxUnknown: DefaultMaxUnknown}
}

// RankVideos keeps videos whose unknown count is at most opts.MaxUnknown,
// orders them by score descending (ties keep catalog order) and truncates to
// opts.Limit. counts must be in catalog order; it is not modified.
func RankVideos(counts []domain.VideoUnknownCount, opts Options) []domain.VideoUnknownCount {
	if opts.Limit <= 0 {
		return []domain.VideoUnknownCount{}
	}

	eligible := make([]domain.VideoUnknownCount, 0, len(counts))
	for _, c := range counts {
		if c.UnknownCount <= opts.MaxUnknown {
			eligible = append(eligible, c)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Video.Score > eligible[j].Video.Score
	})

	if len(eligible) > opts.Limit {
		eligible = eligible[:opts.Limit]
	}
	return eligible
}

// CountUnknown counts the word IDs that have no level in levels or whose
// level is unknown. A video with no words has zero unknown words.
func CountUnknown(wordIDs []uuid.UUID, levels map[uuid.UUID]domain.MasteryLevel) int {
	unknown := 0
	for _, id := range wordIDs {
		level, ok := levels[id]
		if !ok || level == domain.MasteryUnknown {
			unknown++
		}
	}
	return unknown
}
