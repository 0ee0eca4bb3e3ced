package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/cache"
	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/domain/mastery"
	"github.com/phrazzld/wordpath-api/internal/metrics"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// QuizAnswer is one answered quiz question.
type QuizAnswer struct {
	WordID  uuid.UUID `json:"word_id"`
	Correct bool      `json:"correct"`
}

// MasteryCache is the read-through projection cache used by MasteryService.
// *cache.Coordinator satisfies it.
type MasteryCache interface {
	MasteredWords(ctx context.Context, learnerID uuid.UUID, load cache.Loader) ([]domain.MasteredWord, error)
	Invalidate(ctx context.Context, learnerID uuid.UUID)
}

// MasteryService tracks learners' mastery of words.
type MasteryService interface {
	// RecordInteraction applies one quiz answer to the learner's record for the word.
	RecordInteraction(ctx context.Context, learnerID, wordID uuid.UUID, correct bool) (*domain.MasteryRecord, error)

	// SubmitQuiz records every answer in one transaction. Returns
	// store.ErrLearnerNotFound for an unknown learner.
	SubmitQuiz(ctx context.Context, learnerID uuid.UUID, answers []QuizAnswer) ([]domain.MasteryRecord, error)

	// SetMastery overrides the level, creating an unseen record if needed.
	// Repeating the call with the same level leaves the state unchanged.
	SetMastery(ctx context.Context, learnerID, wordID uuid.UUID, level domain.MasteryLevel) (*domain.MasteredWord, error)

	// MasteredWords returns the learner's words at level learning or above.
	MasteredWords(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error)
}

type masteryServiceImpl struct {
	learners store.LearnerStore
	words    store.WordStore
	records  store.MasteryStore
	runTx    store.TxRunner
	cache    MasteryCache
	tracker  mastery.Service
	now      func() time.Time
	logger   *slog.Logger
}

// NewMasteryService creates a MasteryService.
// It returns an error if any of the required dependencies are nil.
func NewMasteryService(
	learners store.LearnerStore,
	words store.WordStore,
	records store.MasteryStore,
	runTx store.TxRunner,
	cache MasteryCache,
	logger *slog.Logger,
) (MasteryService, error) {
	if learners == nil {
		return nil, domain.NewValidationError("learners", "cannot be nil", domain.ErrValidation)
	}
	if words == nil {
		return nil, domain.NewValidationError("words", "cannot be nil", domain.ErrValidation)
	}
	if records == nil {
		return nil, domain.NewValidationError("records", "cannot be nil", domain.ErrValidation)
	}
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if cache == nil {
		return nil, domain.NewValidationError("cache", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &masteryServiceImpl{
		learners: learners,
		words:    words,
		records:  records,
		runTx:    runTx,
		cache:    cache,
		tracker:  mastery.NewDefaultService(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "mastery_service")),
	}, nil
}

// RecordInteraction implements MasteryService.RecordInteraction
func (s *masteryServiceImpl) RecordInteraction(
	ctx context.Context,
	learnerID, wordID uuid.UUID,
	correct bool,
) (*domain.MasteryRecord, error) {
	records, err := s.SubmitQuiz(ctx, learnerID, []QuizAnswer{{WordID: wordID, Correct: correct}})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// SubmitQuiz implements MasteryService.SubmitQuiz
func (s *masteryServiceImpl) SubmitQuiz(
	ctx context.Context,
	learnerID uuid.UUID,
	answers []QuizAnswer,
) ([]domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		return nil, s.lookupError(log, "submit_quiz", err)
	}
	if len(answers) == 0 {
		return []domain.MasteryRecord{}, nil
	}

	var results []domain.MasteryRecord
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		results, err = recordAnswers(ctx, s.records.WithTx(tx), s.tracker, s.now(), learnerID, answers)
		return err
	})
	if err != nil {
		log.Error("failed to record quiz answers",
			slog.Int("answer_count", len(answers)),
			slog.String("error", err.Error()))
		return nil, wrapUnexpected("mastery", "submit_quiz", err)
	}

	s.cache.Invalidate(ctx, learnerID)
	for _, r := range results {
		metrics.MasteryTransitions.WithLabelValues("interaction", r.Level.String()).Inc()
	}

	log.Debug("recorded quiz answers", slog.Int("answer_count", len(results)))
	return results, nil
}

// recordAnswers applies each answer in order through records, which should
// be bound to the caller's transaction.
func recordAnswers(
	ctx context.Context,
	records store.MasteryStore,
	tracker mastery.Service,
	now time.Time,
	learnerID uuid.UUID,
	answers []QuizAnswer,
) ([]domain.MasteryRecord, error) {
	results := make([]domain.MasteryRecord, 0, len(answers))
	for _, ans := range answers {
		current, err := loadOrNew(ctx, records, learnerID, ans.WordID)
		if err != nil {
			return nil, err
		}

		updated, err := tracker.RecordInteraction(current, ans.Correct, now)
		if err != nil {
			return nil, err
		}

		if err := records.Upsert(ctx, updated); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				// The learner exists, so the word reference is what failed.
				return nil, store.ErrWordNotFound
			}
			return nil, err
		}
		results = append(results, *updated)
	}
	return results, nil
}

// SetMastery implements MasteryService.SetMastery
func (s *masteryServiceImpl) SetMastery(
	ctx context.Context,
	learnerID, wordID uuid.UUID,
	level domain.MasteryLevel,
) (*domain.MasteredWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("word_id", wordID.String()))

	if !level.Valid() {
		return nil, domain.ErrInvalidMasteryLevel
	}
	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		return nil, s.lookupError(log, "set_mastery", err)
	}

	var (
		record *domain.MasteryRecord
		word   *domain.Word
	)
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		word, err = s.words.WithTx(tx).GetByID(ctx, wordID)
		if err != nil {
			return err
		}

		records := s.records.WithTx(tx)
		current, err := loadOrNew(ctx, records, learnerID, wordID)
		if err != nil {
			return err
		}

		record, err = s.tracker.Override(current, level, s.now())
		if err != nil {
			return err
		}
		return records.Upsert(ctx, record)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("word not found for mastery override")
			return nil, err
		}
		log.Error("failed to set mastery level", slog.String("error", err.Error()))
		return nil, wrapUnexpected("mastery", "set_mastery", err)
	}

	s.cache.Invalidate(ctx, learnerID)
	metrics.MasteryTransitions.WithLabelValues("override", record.Level.String()).Inc()

	log.Info("mastery level set", slog.String("level", record.Level.String()))
	return &domain.MasteredWord{
		WordID:     record.WordID,
		Text:       word.Text,
		Level:      record.Level,
		SeenCount:  record.SeenCount,
		LastSeenAt: record.LastSeenAt,
	}, nil
}

// MasteredWords implements MasteryService.MasteredWords
func (s *masteryServiceImpl) MasteredWords(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		return nil, s.lookupError(log, "mastered_words", err)
	}

	words, err := s.cache.MasteredWords(ctx, learnerID, func(ctx context.Context) ([]domain.MasteredWord, error) {
		return s.records.ListMastered(ctx, learnerID)
	})
	if err != nil {
		if errors.Is(err, store.ErrDanglingRecord) {
			log.Error("mastery record references a missing word", slog.String("error", err.Error()))
		} else {
			log.Error("failed to load mastered words", slog.String("error", err.Error()))
		}
		return nil, wrapUnexpected("mastery", "mastered_words", err)
	}
	return words, nil
}

func loadOrNew(
	ctx context.Context,
	records store.MasteryStore,
	learnerID, wordID uuid.UUID,
) (*domain.MasteryRecord, error) {
	record, err := records.GetForUpdate(ctx, learnerID, wordID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, store.ErrMasteryRecordNotFound) {
		return nil, err
	}
	return domain.NewMasteryRecord(learnerID, wordID)
}

func (s *masteryServiceImpl) lookupError(log *slog.Logger, op string, err error) error {
	if store.IsNotFoundError(err) {
		log.Debug("learner not found", slog.String("operation", op))
		return err
	}
	log.Error("failed to look up learner",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError("mastery", op, err)
}

// wrapUnexpected keeps not-found and validation errors recognizable to
// callers and wraps everything else in a ServiceError.
func wrapUnexpected(service, op string, err error) error {
	var valErr *domain.ValidationError
	switch {
	case store.IsNotFoundError(err),
		errors.Is(err, domain.ErrInvalidMasteryLevel),
		errors.As(err, &valErr):
		return err
	default:
		return NewServiceError(service, op, err)
	}
}
