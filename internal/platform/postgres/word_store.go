package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// PostgresWordStore implements the store.WordStore interface.
type PostgresWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWordStore creates a new PostgreSQL implementation of the WordStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresWordStore(db store.DBTX, logger *slog.Logger) *PostgresWordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

var _ store.WordStore = (*PostgresWordStore)(nil)

// GetOrCreate implements store.WordStore.GetOrCreate
//
// The no-op update on conflict makes RETURNING yield the existing row, so a
// concurrent insert of the same text resolves to one ID.
func (s *PostgresWordStore) GetOrCreate(ctx context.Context, text string) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidate, err := domain.NewWord(text)
	if err != nil {
		return nil, err
	}

	var word domain.Word
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO words (id, text, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (text) DO UPDATE SET text = EXCLUDED.text
		RETURNING id, text, created_at
	`, candidate.ID, candidate.Text, candidate.CreatedAt).Scan(&word.ID, &word.Text, &word.CreatedAt)
	if err != nil {
		log.Error("failed to get or create word",
			slog.String("text", candidate.Text),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &word, nil
}

// GetByID implements store.WordStore.GetByID
func (s *PostgresWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var word domain.Word
	err := s.db.QueryRowContext(ctx, `
		SELECT id, text, created_at FROM words WHERE id = $1
	`, id).Scan(&word.ID, &word.Text, &word.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get word",
				slog.String("word_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, mapNotFound(err, store.ErrWordNotFound)
	}

	return &word, nil
}

// WithTx implements store.WordStore.WithTx
func (s *PostgresWordStore) WithTx(tx *sql.Tx) store.WordStore {
	return &PostgresWordStore{db: tx, logger: s.logger}
}
