package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// PostgresMasteryStore implements the store.MasteryStore interface.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the MasteryStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

const selectMasteryRecord = `
	SELECT learner_id, word_id, seen_count, last_seen_at, mastery_level, created_at, updated_at
	FROM mastery_records
	WHERE learner_id = $1 AND word_id = $2`

// Get implements store.MasteryStore.Get
func (s *PostgresMasteryStore) Get(ctx context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error) {
	return s.get(ctx, selectMasteryRecord, learnerID, wordID)
}

// GetForUpdate implements store.MasteryStore.GetForUpdate
func (s *PostgresMasteryStore) GetForUpdate(ctx context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error) {
	return s.get(ctx, selectMasteryRecord+" FOR UPDATE", learnerID, wordID)
}

func (s *PostgresMasteryStore) get(ctx context.Context, query string, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		record     domain.MasteryRecord
		lastSeenAt sql.NullTime
		level      int
	)
	err := s.db.QueryRowContext(ctx, query, learnerID, wordID).Scan(
		&record.LearnerID,
		&record.WordID,
		&record.SeenCount,
		&lastSeenAt,
		&level,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get mastery record",
				slog.String("learner_id", learnerID.String()),
				slog.String("word_id", wordID.String()),
				slog.String("error", err.Error()))
		}
		return nil, mapNotFound(err, store.ErrMasteryRecordNotFound)
	}

	record.Level = domain.MasteryLevel(level)
	if lastSeenAt.Valid {
		t := lastSeenAt.Time
		record.LastSeenAt = &t
	}
	return &record, nil
}

// Upsert implements store.MasteryStore.Upsert
func (s *PostgresMasteryStore) Upsert(ctx context.Context, record *domain.MasteryRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("mastery record validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("learner_id", record.LearnerID.String()),
			slog.String("word_id", record.WordID.String()))
		return err
	}

	var lastSeenAt sql.NullTime
	if record.LastSeenAt != nil {
		lastSeenAt = sql.NullTime{Time: *record.LastSeenAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mastery_records
			(learner_id, word_id, seen_count, last_seen_at, mastery_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (learner_id, word_id) DO UPDATE SET
			seen_count = EXCLUDED.seen_count,
			last_seen_at = EXCLUDED.last_seen_at,
			mastery_level = EXCLUDED.mastery_level,
			updated_at = EXCLUDED.updated_at
	`,
		record.LearnerID,
		record.WordID,
		record.SeenCount,
		lastSeenAt,
		int(record.Level),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert mastery record",
			slog.String("learner_id", record.LearnerID.String()),
			slog.String("word_id", record.WordID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// ListMastered implements store.MasteryStore.ListMastered
//
// The word join is a LEFT JOIN so a record whose word has disappeared is
// reported instead of silently dropped.
func (s *PostgresMasteryStore) ListMastered(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT mr.word_id, w.text, mr.mastery_level, mr.seen_count, mr.last_seen_at
		FROM mastery_records mr
		LEFT JOIN words w ON w.id = mr.word_id
		WHERE mr.learner_id = $1 AND mr.mastery_level >= $2
		ORDER BY w.text NULLS FIRST
	`, learnerID, int(domain.MasteryLearning))
	if err != nil {
		log.Error("failed to list mastered words",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	words := make([]domain.MasteredWord, 0)
	for rows.Next() {
		var (
			word       domain.MasteredWord
			text       sql.NullString
			level      int
			lastSeenAt sql.NullTime
		)
		if err := rows.Scan(&word.WordID, &text, &level, &word.SeenCount, &lastSeenAt); err != nil {
			log.Error("failed to scan mastered word",
				slog.String("learner_id", learnerID.String()),
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		if !text.Valid {
			log.Error("mastery record references a missing word",
				slog.String("learner_id", learnerID.String()),
				slog.String("word_id", word.WordID.String()))
			return nil, fmt.Errorf("%w: word %s", store.ErrDanglingRecord, word.WordID)
		}

		word.Text = text.String
		word.Level = domain.MasteryLevel(level)
		if lastSeenAt.Valid {
			t := lastSeenAt.Time
			word.LastSeenAt = &t
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating mastered words",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return words, nil
}

// Levels implements store.MasteryStore.Levels
func (s *PostgresMasteryStore) Levels(
	ctx context.Context,
	learnerID uuid.UUID,
	wordIDs []uuid.UUID,
) (map[uuid.UUID]domain.MasteryLevel, error) {
	levels := make(map[uuid.UUID]domain.MasteryLevel, len(wordIDs))
	if len(wordIDs) == 0 {
		return levels, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	ids := make([]string, len(wordIDs))
	for i, id := range wordIDs {
		ids[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT word_id, mastery_level
		FROM mastery_records
		WHERE learner_id = $1 AND word_id = ANY($2::uuid[])
	`, learnerID, ids)
	if err != nil {
		log.Error("failed to query mastery levels",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	for rows.Next() {
		var (
			wordID uuid.UUID
			level  int
		)
		if err := rows.Scan(&wordID, &level); err != nil {
			return nil, MapError(err)
		}
		levels[wordID] = domain.MasteryLevel(level)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return levels, nil
}

// WithTx implements store.MasteryStore.WithTx
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return &PostgresMasteryStore{db: tx, logger: s.logger}
}
