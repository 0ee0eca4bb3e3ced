package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/domain/mastery"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/service/auth"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// LearnerService registers learners and checks their credentials.
type LearnerService interface {
	// Register creates a learner and records optional placement quiz answers
	// in the same transaction. Returns store.ErrUsernameExists if taken.
	Register(ctx context.Context, username, password string, answers []QuizAnswer) (*domain.Learner, error)

	// Login returns the learner whose credentials match, or ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.Learner, error)
}

type learnerServiceImpl struct {
	learners store.LearnerStore
	records  store.MasteryStore
	runTx    store.TxRunner
	hasher   auth.PasswordHasher
	tracker  mastery.Service
	now      func() time.Time
	logger   *slog.Logger
}

// NewLearnerService creates a LearnerService.
// It returns an error if any of the required dependencies are nil.
func NewLearnerService(
	learners store.LearnerStore,
	records store.MasteryStore,
	runTx store.TxRunner,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (LearnerService, error) {
	if learners == nil {
		return nil, domain.NewValidationError("learners", "cannot be nil", domain.ErrValidation)
	}
	if records == nil {
		return nil, domain.NewValidationError("records", "cannot be nil", domain.ErrValidation)
	}
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &learnerServiceImpl{
		learners: learners,
		records:  records,
		runTx:    runTx,
		hasher:   hasher,
		tracker:  mastery.NewDefaultService(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "learner_service")),
	}, nil
}

// Register implements LearnerService.Register
func (s *learnerServiceImpl) Register(
	ctx context.Context,
	username, password string,
	answers []QuizAnswer,
) (*domain.Learner, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	learner, err := domain.NewLearner(username, password)
	if err != nil {
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("learner", "register", err)
	}
	learner.HashedPassword = hashed
	learner.Password = ""

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.learners.WithTx(tx).Create(ctx, learner); err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		_, err := recordAnswers(ctx, s.records.WithTx(tx), s.tracker, s.now(), learner.ID, answers)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("username already registered", slog.String("username", learner.Username))
			return nil, err
		}
		if store.IsNotFoundError(err) {
			return nil, err
		}
		log.Error("failed to register learner", slog.String("error", err.Error()))
		return nil, NewServiceError("learner", "register", err)
	}

	log.Info("registered learner",
		slog.String("learner_id", learner.ID.String()),
		slog.Int("quiz_answers", len(answers)))
	return learner, nil
}

// Login implements LearnerService.Login
func (s *learnerServiceImpl) Login(ctx context.Context, username, password string) (*domain.Learner, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	learner, err := s.learners.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up learner", slog.String("error", err.Error()))
		return nil, NewServiceError("learner", "login", err)
	}

	if err := s.hasher.Compare(learner.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("learner_id", learner.ID.String()))
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.String("error", err.Error()))
		return nil, NewServiceError("learner", "login", err)
	}

	return learner, nil
}
