package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/wordpath-api/internal/domain"
)

// LearnerStore defines the interface for learner persistence.
type LearnerStore interface {
	// Create saves a new learner. HashedPassword must already be set.
	// Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, learner *domain.Learner) error

	// GetByID retrieves a learner by ID.
	// Returns ErrLearnerNotFound if the learner does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error)

	// GetByUsername retrieves a learner by username.
	// Returns ErrLearnerNotFound if the learner does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.Learner, error)

	// WithTx returns a LearnerStore bound to tx.
	WithTx(tx *sql.Tx) LearnerStore
}
