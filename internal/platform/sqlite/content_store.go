package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/store"
)

type contentRow struct {
	ID         uuid.UUID `db:"id"`
	Title      string    `db:"title"`
	Text       string    `db:"text"`
	GradeLevel float64   `db:"grade_level"`
	CreatedAt  time.Time `db:"created_at"`
}

// ContentStore implements store.ContentStore on SQLite.
type ContentStore struct {
	db     sqlx.ExtContext
	mapper *reflectx.Mapper
	logger *slog.Logger
}

var _ store.ContentStore = (*ContentStore)(nil)

// NewContentStore creates a ContentStore. If logger is nil, a default logger will be used.
func NewContentStore(db *sqlx.DB, logger *slog.Logger) *ContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{
		db:     db,
		mapper: db.Mapper,
		logger: logger.With(slog.String("component", "sqlite_content_store")),
	}
}

// Create implements store.ContentStore.Create
func (s *ContentStore) Create(ctx context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_items (id, title, text, grade_level, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, item.ID, item.Title, item.Text, item.GradeLevel, item.CreatedAt)
	if err != nil {
		s.logger.Error("failed to insert content item",
			slog.String("content_id", item.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

// WithTx implements store.ContentStore.WithTx. The returned store shares the
// receiver's column mapper.
func (s *ContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &ContentStore{
		db:     &sqlx.Tx{Tx: tx, Mapper: s.mapper},
		mapper: s.mapper,
		logger: s.logger,
	}
}

// List implements store.ContentStore.List
func (s *ContentStore) List(ctx context.Context) ([]domain.ContentItem, error) {
	var rows []contentRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, title, text, grade_level, created_at FROM content_items ORDER BY seq
	`); err != nil {
		s.logger.Error("failed to list content", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list content: %w", err)
	}

	items := make([]domain.ContentItem, len(rows))
	for i, r := range rows {
		items[i] = domain.ContentItem{
			ID:         r.ID,
			Title:      r.Title,
			Text:       r.Text,
			GradeLevel: r.GradeLevel,
			CreatedAt:  r.CreatedAt,
		}
	}
	return items, nil
}

// KnownWordStore implements store.KnownWordStore on SQLite.
type KnownWordStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.KnownWordStore = (*KnownWordStore)(nil)

// NewKnownWordStore creates a KnownWordStore. If logger is nil, a default logger will be used.
func NewKnownWordStore(db *sqlx.DB, logger *slog.Logger) *KnownWordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KnownWordStore{db: db, logger: logger.With(slog.String("component", "sqlite_known_word_store"))}
}

// Add implements store.KnownWordStore.Add. The inserts share one transaction.
func (s *KnownWordStore) Add(ctx context.Context, learnerID uuid.UUID, words []string) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, raw := range words {
		word := domain.NormalizeWord(raw)
		if word == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO known_words (learner_id, word) VALUES (?, ?)`,
			learnerID.String(), word)
		if err != nil {
			s.logger.Error("failed to add known word", slog.String("error", err.Error()))
			return 0, fmt.Errorf("add known word: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

// List implements store.KnownWordStore.List
func (s *KnownWordStore) List(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	words := make([]string, 0)
	if err := s.db.SelectContext(ctx, &words,
		`SELECT word FROM known_words WHERE learner_id = ? ORDER BY word`,
		learnerID.String()); err != nil {
		return nil, fmt.Errorf("list known words: %w", err)
	}
	return words, nil
}
