package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/wordpath-api/internal/domain"
)

// WordStore defines the interface for the shared vocabulary.
type WordStore interface {
	// GetOrCreate returns the word with the normalized text, creating it if
	// it does not exist yet.
	GetOrCreate(ctx context.Context, text string) (*domain.Word, error)

	// GetByID retrieves a word by ID.
	// Returns ErrWordNotFound if the word does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)

	// WithTx returns a WordStore bound to tx.
	WithTx(tx *sql.Tx) WordStore
}

// MasteryStore defines the interface for per-learner mastery records.
// Records are never deleted.
type MasteryStore interface {
	// Get retrieves the record for (learnerID, wordID).
	// Returns ErrMasteryRecordNotFound if the learner has never seen the word.
	Get(ctx context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error)

	// GetForUpdate is Get with a row lock held until the enclosing
	// transaction ends. Without a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error)

	// Upsert inserts or replaces the record for (LearnerID, WordID).
	// Returns ErrInvalidEntity if the learner or word does not exist.
	Upsert(ctx context.Context, record *domain.MasteryRecord) error

	// ListMastered returns the learner's records at level learning or above,
	// joined with word text, ordered by word text.
	// Returns ErrDanglingRecord if a record's word cannot be resolved.
	ListMastered(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error)

	// Levels returns the learner's levels for the given words. Words without
	// a record are absent from the map.
	Levels(ctx context.Context, learnerID uuid.UUID, wordIDs []uuid.UUID) (map[uuid.UUID]domain.MasteryLevel, error)

	// WithTx returns a MasteryStore bound to tx.
	WithTx(tx *sql.Tx) MasteryStore
}
