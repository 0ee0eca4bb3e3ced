package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MasteryLevel is a learner's familiarity with a word. The three values are
// ordered: unknown < learning < mastered.
type MasteryLevel int

// Possible mastery levels
const (
	MasteryUnknown  MasteryLevel = 0
	MasteryLearning MasteryLevel = 1
	MasteryMastered MasteryLevel = 2
)

// Validation errors for MasteryRecord
var (
	ErrEmptyMasteryLearnerID = errors.New("mastery record learner ID cannot be empty")
	ErrEmptyMasteryWordID    = errors.New("mastery record word ID cannot be empty")
	ErrNegativeSeenCount     = errors.New("seen count cannot be negative")
)

// String returns the level name used in serialized projections.
func (l MasteryLevel) String() string {
	switch l {
	case MasteryUnknown:
		return "unknown"
	case MasteryLearning:
		return "learning"
	case MasteryMastered:
		return "mastered"
	default:
		return fmt.Sprintf("MasteryLevel(%d)", int(l))
	}
}

// Valid reports whether l is one of the three defined levels.
func (l MasteryLevel) Valid() bool {
	return l >= MasteryUnknown && l <= MasteryMastered
}

// Promote moves one level up, saturating at mastered.
func (l MasteryLevel) Promote() MasteryLevel {
	if l >= MasteryMastered {
		return MasteryMastered
	}
	return l + 1
}

// Demote moves one level down, saturating at unknown.
func (l MasteryLevel) Demote() MasteryLevel {
	if l <= MasteryUnknown {
		return MasteryUnknown
	}
	return l - 1
}

// ParseMasteryLevel parses a level name (case-insensitive).
func ParseMasteryLevel(name string) (MasteryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "unknown":
		return MasteryUnknown, nil
	case "learning":
		return MasteryLearning, nil
	case "mastered":
		return MasteryMastered, nil
	default:
		return MasteryUnknown, fmt.Errorf("%w: %q", ErrInvalidMasteryLevel, name)
	}
}

// MarshalText encodes the level by name.
func (l MasteryLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMasteryLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *MasteryLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseMasteryLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MasteryRecord tracks one learner's progress on one word.
// SeenCount only ever increases and LastSeenAt is nil until the first
// recorded interaction.
type MasteryRecord struct {
	LearnerID  uuid.UUID    `json:"learner_id"`
	WordID     uuid.UUID    `json:"word_id"`
	SeenCount  int          `json:"seen_count"`
	LastSeenAt *time.Time   `json:"last_seen_at"`
	Level      MasteryLevel `json:"mastery_level"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewMasteryRecord creates an unseen record at level unknown.
func NewMasteryRecord(learnerID, wordID uuid.UUID) (*MasteryRecord, error) {
	now := time.Now().UTC()
	record := &MasteryRecord{
		LearnerID: learnerID,
		WordID:    wordID,
		SeenCount: 0,
		Level:     MasteryUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the MasteryRecord has valid data.
func (r *MasteryRecord) Validate() error {
	if r.LearnerID == uuid.Nil {
		return ErrEmptyMasteryLearnerID
	}

	if r.WordID == uuid.Nil {
		return ErrEmptyMasteryWordID
	}

	if r.SeenCount < 0 {
		return ErrNegativeSeenCount
	}

	if !r.Level.Valid() {
		return ErrInvalidMasteryLevel
	}

	return nil
}

// MasteredWord is a mastery record joined with its word text. It is the
// element type of the learner's cached mastered-word projection.
type MasteredWord struct {
	WordID     uuid.UUID    `json:"word_id"`
	Text       string       `json:"text"`
	Level      MasteryLevel `json:"mastery_level"`
	SeenCount  int          `json:"seen_count"`
	LastSeenAt *time.Time   `json:"last_seen_at"`
}
