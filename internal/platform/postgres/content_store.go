package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// PostgresContentStore implements the store.ContentStore interface.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentStore interface.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

var _ store.ContentStore = (*PostgresContentStore)(nil)

// Create implements store.ContentStore.Create
func (s *PostgresContentStore) Create(ctx context.Context, item *domain.ContentItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("content validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_items (id, title, text, grade_level, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.Title, item.Text, item.GradeLevel, item.CreatedAt)
	if err != nil {
		log.Error("failed to insert content item",
			slog.String("content_id", item.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// WithTx implements store.ContentStore.WithTx
func (s *PostgresContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &PostgresContentStore{db: tx, logger: s.logger}
}

// List implements store.ContentStore.List
func (s *PostgresContentStore) List(ctx context.Context) ([]domain.ContentItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, text, grade_level, created_at
		FROM content_items
		ORDER BY seq
	`)
	if err != nil {
		log.Error("failed to list content", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	items := make([]domain.ContentItem, 0)
	for rows.Next() {
		var item domain.ContentItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.GradeLevel, &item.CreatedAt); err != nil {
			log.Error("failed to scan content item", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// PostgresKnownWordStore implements the store.KnownWordStore interface.
type PostgresKnownWordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresKnownWordStore creates a new PostgreSQL implementation of the KnownWordStore interface.
func NewPostgresKnownWordStore(db store.DBTX, logger *slog.Logger) *PostgresKnownWordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresKnownWordStore{
		db:     db,
		logger: logger.With(slog.String("component", "known_word_store")),
	}
}

var _ store.KnownWordStore = (*PostgresKnownWordStore)(nil)

// Add implements store.KnownWordStore.Add
func (s *PostgresKnownWordStore) Add(ctx context.Context, learnerID uuid.UUID, words []string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	added := 0
	for _, raw := range words {
		word := domain.NormalizeWord(raw)
		if word == "" {
			continue
		}

		result, err := s.db.ExecContext(ctx, `
			INSERT INTO known_words (learner_id, word)
			VALUES ($1, $2)
			ON CONFLICT (learner_id, word) DO NOTHING
		`, learnerID, word)
		if err != nil {
			log.Error("failed to add known word",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			return added, MapError(err)
		}
		if n, err := result.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	return added, nil
}

// List implements store.KnownWordStore.List
func (s *PostgresKnownWordStore) List(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT word FROM known_words WHERE learner_id = $1 ORDER BY word
	`, learnerID)
	if err != nil {
		log.Error("failed to list known words",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	words := make([]string, 0)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, MapError(err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return words, nil
}
