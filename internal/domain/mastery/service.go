// Package mastery implements the per-word mastery state machine. It is pure:
// callers load and persist records, this package only computes transitions.
package mastery

import (
	"errors"
	"time"

	"github.com/phrazzld/wordpath-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord = errors.New("mastery record cannot be nil")
)

// Service defines the mastery transition operations
type Service interface {
	// RecordInteraction computes the record after the learner answered once.
	RecordInteraction(
		record *domain.MasteryRecord,
		correct bool,
		now time.Time,
	) (*domain.MasteryRecord, error)

	// Override sets the level directly, leaving interaction history untouched.
	Override(
		record *domain.MasteryRecord,
		level domain.MasteryLevel,
		now time.Time,
	) (*domain.MasteryRecord, error)
}

type defaultService struct{}

// NewDefaultService creates the standard mastery service
func NewDefaultService() Service {
	return &defaultService{}
}

// RecordInteraction implements Service.RecordInteraction
func (s *defaultService) RecordInteraction(
	record *domain.MasteryRecord,
	correct bool,
	now time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return applyInteraction(record, correct, now), nil
}

// Override implements Service.Override
func (s *defaultService) Override(
	record *domain.MasteryRecord,
	level domain.MasteryLevel,
	now time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if !level.Valid() {
		return nil, domain.ErrInvalidMasteryLevel
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return applyOverride(record, level, now), nil
}
