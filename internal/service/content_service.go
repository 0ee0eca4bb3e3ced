package service

import (
	"context"
	"database/sql"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/domain/readability"
	"github.com/phrazzld/wordpath-api/internal/metrics"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/recommend"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// CorpusDocument is a raw text to ingest into the content catalog.
type CorpusDocument struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ContentService ingests reading content and recommends it to learners.
type ContentService interface {
	// Ingest scores each document and appends it to the catalog. The batch is
	// all or nothing: one invalid document rejects every document.
	Ingest(ctx context.Context, docs []CorpusDocument) ([]domain.ContentItem, error)

	// RecommendByLevel returns the item closest to one grade above level.
	// Returns ErrNoContent for an empty catalog.
	RecommendByLevel(ctx context.Context, level float64) (*domain.ContentItem, error)

	// RecommendByCoverage returns the item with the highest share of the
	// learner's known words. Returns ErrNoContent for an empty catalog.
	RecommendByCoverage(ctx context.Context, learnerID uuid.UUID) (*recommend.CoverageMatch, error)

	// AddKnownWords adds normalized words to the learner's known set and
	// returns how many were new.
	AddKnownWords(ctx context.Context, learnerID uuid.UUID, words []string) (int, error)

	// ListKnownWords returns the learner's known words alphabetically.
	ListKnownWords(ctx context.Context, learnerID uuid.UUID) ([]string, error)
}

type contentServiceImpl struct {
	content  store.ContentStore
	known    store.KnownWordStore
	learners store.LearnerStore
	runTx    store.TxRunner
	logger   *slog.Logger
}

// NewContentService creates a ContentService. learners is optional: when set,
// known-word operations return store.ErrLearnerNotFound for unknown learners.
// The local library has no learner table and passes nil.
func NewContentService(
	content store.ContentStore,
	known store.KnownWordStore,
	learners store.LearnerStore,
	runTx store.TxRunner,
	logger *slog.Logger,
) (ContentService, error) {
	if content == nil {
		return nil, domain.NewValidationError("content", "cannot be nil", domain.ErrValidation)
	}
	if known == nil {
		return nil, domain.NewValidationError("known", "cannot be nil", domain.ErrValidation)
	}
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &contentServiceImpl{
		content:  content,
		known:    known,
		learners: learners,
		runTx:    runTx,
		logger:   logger.With(slog.String("component", "content_service")),
	}, nil
}

// Ingest implements ContentService.Ingest
func (s *contentServiceImpl) Ingest(ctx context.Context, docs []CorpusDocument) ([]domain.ContentItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items := make([]domain.ContentItem, 0, len(docs))
	for i, doc := range docs {
		item, err := domain.NewContentItem(doc.Title, doc.Text, readability.GradeLevel(doc.Text))
		if err != nil {
			log.Debug("rejected corpus document",
				slog.Int("index", i),
				slog.String("title", doc.Title),
				slog.String("error", err.Error()))
			return nil, domain.NewValidationError("documents", err.Error(), err)
		}
		items = append(items, *item)
	}

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		content := s.content.WithTx(tx)
		for i := range items {
			if err := content.Create(ctx, &items[i]); err != nil {
				log.Error("failed to store content item",
					slog.String("title", items[i].Title),
					slog.String("error", err.Error()))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewServiceError("content", "ingest", err)
	}

	log.Info("ingested content", slog.Int("count", len(items)))
	return items, nil
}

// RecommendByLevel implements ContentService.RecommendByLevel
func (s *contentServiceImpl) RecommendByLevel(ctx context.Context, level float64) (*domain.ContentItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if math.IsNaN(level) || math.IsInf(level, 0) {
		return nil, domain.NewValidationError("level", "must be a finite number", domain.ErrInvalidGradeLevel)
	}

	catalog, err := s.content.List(ctx)
	if err != nil {
		log.Error("failed to list content", slog.String("error", err.Error()))
		return nil, NewServiceError("content", "recommend_by_level", err)
	}

	item := recommend.ByLevel(level, catalog)
	if item == nil {
		metrics.Recommendations.WithLabelValues("level", "empty").Inc()
		return nil, ErrNoContent
	}

	metrics.Recommendations.WithLabelValues("level", "ok").Inc()
	log.Debug("recommended content by level",
		slog.Float64("level", level),
		slog.String("content_id", item.ID.String()),
		slog.Float64("grade_level", item.GradeLevel))
	return item, nil
}

// RecommendByCoverage implements ContentService.RecommendByCoverage
func (s *contentServiceImpl) RecommendByCoverage(
	ctx context.Context,
	learnerID uuid.UUID,
) (*recommend.CoverageMatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	words, err := s.ListKnownWords(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.content.List(ctx)
	if err != nil {
		log.Error("failed to list content", slog.String("error", err.Error()))
		return nil, NewServiceError("content", "recommend_by_coverage", err)
	}

	match := recommend.ByCoverage(domain.NewKnownWordSet(words...), catalog)
	if match == nil {
		metrics.Recommendations.WithLabelValues("coverage", "empty").Inc()
		return nil, ErrNoContent
	}

	metrics.Recommendations.WithLabelValues("coverage", "ok").Inc()
	log.Debug("recommended content by coverage",
		slog.String("content_id", match.Item.ID.String()),
		slog.Float64("coverage", match.Coverage))
	return match, nil
}

// AddKnownWords implements ContentService.AddKnownWords
func (s *contentServiceImpl) AddKnownWords(ctx context.Context, learnerID uuid.UUID, words []string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	if err := s.checkLearner(ctx, learnerID); err != nil {
		return 0, err
	}

	added, err := s.known.Add(ctx, learnerID, words)
	if err != nil {
		log.Error("failed to add known words", slog.String("error", err.Error()))
		return 0, NewServiceError("content", "add_known_words", err)
	}

	log.Debug("added known words", slog.Int("submitted", len(words)), slog.Int("added", added))
	return added, nil
}

// ListKnownWords implements ContentService.ListKnownWords
func (s *contentServiceImpl) ListKnownWords(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	if err := s.checkLearner(ctx, learnerID); err != nil {
		return nil, err
	}

	words, err := s.known.List(ctx, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list known words",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("content", "list_known_words", err)
	}
	return words, nil
}

func (s *contentServiceImpl) checkLearner(ctx context.Context, learnerID uuid.UUID) error {
	if s.learners == nil {
		return nil
	}
	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return NewServiceError("content", "lookup_learner", err)
	}
	return nil
}
