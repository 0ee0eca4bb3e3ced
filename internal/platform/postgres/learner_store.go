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

// PostgresLearnerStore implements the store.LearnerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLearnerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearnerStore creates a new PostgreSQL implementation of the LearnerStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresLearnerStore(db store.DBTX, logger *slog.Logger) *PostgresLearnerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearnerStore{
		db:     db,
		logger: logger.With(slog.String("component", "learner_store")),
	}
}

// Ensure PostgresLearnerStore implements store.LearnerStore interface
var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// Create implements store.LearnerStore.Create
func (s *PostgresLearnerStore) Create(ctx context.Context, learner *domain.Learner) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := learner.Validate(); err != nil {
		log.Warn("learner validation failed during create",
			slog.String("error", err.Error()),
			slog.String("learner_id", learner.ID.String()))
		return err
	}
	if learner.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learners (id, username, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, learner.ID, learner.Username, learner.HashedPassword, learner.CreatedAt, learner.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("attempt to create learner with existing username",
				slog.String("username", learner.Username))
			return MapUniqueViolation(err, "learner", store.ErrUsernameExists)
		}
		log.Error("failed to insert learner",
			slog.String("error", err.Error()),
			slog.String("learner_id", learner.ID.String()))
		return MapError(err)
	}

	log.Debug("learner created", slog.String("learner_id", learner.ID.String()))
	return nil
}

// GetByID implements store.LearnerStore.GetByID
func (s *PostgresLearnerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	return s.getBy(ctx, "id", id)
}

// GetByUsername implements store.LearnerStore.GetByUsername
func (s *PostgresLearnerStore) GetByUsername(ctx context.Context, username string) (*domain.Learner, error) {
	return s.getBy(ctx, "username", username)
}

// getBy loads a learner by a unique column. column is never user input.
func (s *PostgresLearnerStore) getBy(ctx context.Context, column string, value any) (*domain.Learner, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var learner domain.Learner
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, hashed_password, created_at, updated_at
		FROM learners
		WHERE `+column+` = $1
	`, value).Scan(
		&learner.ID,
		&learner.Username,
		&learner.HashedPassword,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get learner",
				slog.String("by", column),
				slog.String("error", err.Error()))
		}
		return nil, mapNotFound(err, store.ErrLearnerNotFound)
	}

	return &learner, nil
}

// WithTx implements store.LearnerStore.WithTx
func (s *PostgresLearnerStore) WithTx(tx *sql.Tx) store.LearnerStore {
	return &PostgresLearnerStore{db: tx, logger: s.logger}
}
