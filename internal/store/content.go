package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/wordpath-api/internal/domain"
)

// ContentStore defines the interface for ingested reading content.
type ContentStore interface {
	// Create saves a new content item.
	Create(ctx context.Context, item *domain.ContentItem) error

	// List returns every content item in catalog (ingestion) order.
	List(ctx context.Context) ([]domain.ContentItem, error)

	// WithTx returns a ContentStore bound to tx.
	WithTx(tx *sql.Tx) ContentStore
}

// KnownWordStore defines the interface for learner-declared known words.
type KnownWordStore interface {
	// Add inserts the normalized words, ignoring ones already present.
	// It returns how many were newly added.
	Add(ctx context.Context, learnerID uuid.UUID, words []string) (int, error)

	// List returns the learner's known words in alphabetical order.
	List(ctx context.Context, learnerID uuid.UUID) ([]string, error)
}
