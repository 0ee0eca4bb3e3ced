package mastery

import (
	"time"

	"github.com/phrazzld/wordpath-api/internal/domain"
)

// nextLevel applies one answer to a level: correct answers promote,
// incorrect ones demote. Both saturate at the ends of the scale.
func nextLevel(current domain.MasteryLevel, correct bool) domain.MasteryLevel {
	if correct {
		return current.Promote()
	}
	return current.Demote()
}

// applyInteraction returns a copy of record after one interaction at now.
// The input record is never mutated.
func applyInteraction(
	record *domain.MasteryRecord,
	correct bool,
	now time.Time,
) *domain.MasteryRecord {
	seenAt := now
	next := *record
	next.SeenCount = record.SeenCount + 1
	next.LastSeenAt = &seenAt
	next.Level = nextLevel(record.Level, correct)
	next.UpdatedAt = now
	return &next
}

// applyOverride returns a copy of record with the level replaced. SeenCount
// and LastSeenAt are unchanged.
func applyOverride(
	record *domain.MasteryRecord,
	level domain.MasteryLevel,
	now time.Time,
) *domain.MasteryRecord {
	next := *record
	next.Level = level
	next.UpdatedAt = now
	return &next
}
