package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/domain/readability"
	"github.com/phrazzld/wordpath-api/internal/metrics"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/recommend"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// SegmentInput is one timed transcript line of an imported video.
type SegmentInput struct {
	Text     string `json:"text"`
	StartSec int    `json:"start_sec"`
	EndSec   int    `json:"end_sec"`
}

// VideoImport describes a video and its transcript.
type VideoImport struct {
	Title        string         `json:"title"`
	ThumbnailURL string         `json:"thumbnail_url"`
	Score        int            `json:"score"`
	Segments     []SegmentInput `json:"segments"`
}

// Comprehension summarizes how much of a video's vocabulary a learner knows.
type Comprehension struct {
	VideoID      uuid.UUID `json:"video_id"`
	TotalWords   int       `json:"total_words"`
	UnknownWords int       `json:"unknown_words"`
	KnownRatio   float64   `json:"known_ratio"`
}

// VideoService manages the video catalog and recommends videos.
type VideoService interface {
	// ImportVideo stores the video, its transcript and its tokens. Words are
	// created as needed and linked to the video.
	ImportVideo(ctx context.Context, in VideoImport) (*domain.Video, error)

	// Transcript returns the video's segments by start second.
	// Returns ErrTranscriptNotFound when there are none.
	Transcript(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error)

	// Tokens returns the video's tokens by start second.
	// Returns ErrTokensNotFound when there are none.
	Tokens(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error)

	// RecommendVideos ranks catalog videos with few unknown words for the learner.
	RecommendVideos(ctx context.Context, learnerID uuid.UUID, opts recommend.Options) ([]domain.VideoUnknownCount, error)

	// Comprehension counts the video's words the learner has not started.
	Comprehension(ctx context.Context, learnerID, videoID uuid.UUID) (*Comprehension, error)
}

type videoServiceImpl struct {
	videos   store.VideoStore
	words    store.WordStore
	records  store.MasteryStore
	learners store.LearnerStore
	runTx    store.TxRunner
	logger   *slog.Logger
}

// NewVideoService creates a VideoService.
// It returns an error if any of the required dependencies are nil.
func NewVideoService(
	videos store.VideoStore,
	words store.WordStore,
	records store.MasteryStore,
	learners store.LearnerStore,
	runTx store.TxRunner,
	logger *slog.Logger,
) (VideoService, error) {
	if videos == nil {
		return nil, domain.NewValidationError("videos", "cannot be nil", domain.ErrValidation)
	}
	if words == nil {
		return nil, domain.NewValidationError("words", "cannot be nil", domain.ErrValidation)
	}
	if records == nil {
		return nil, domain.NewValidationError("records", "cannot be nil", domain.ErrValidation)
	}
	if learners == nil {
		return nil, domain.NewValidationError("learners", "cannot be nil", domain.ErrValidation)
	}
	if runTx == nil {
		return nil, domain.NewValidationError("runTx", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &videoServiceImpl{
		videos:   videos,
		words:    words,
		records:  records,
		learners: learners,
		runTx:    runTx,
		logger:   logger.With(slog.String("component", "video_service")),
	}, nil
}

// ImportVideo implements VideoService.ImportVideo
func (s *videoServiceImpl) ImportVideo(ctx context.Context, in VideoImport) (*domain.Video, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	video, err := domain.NewVideo(in.Title, in.ThumbnailURL, in.Score)
	if err != nil {
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	segments := make([]domain.TranscriptSegment, len(in.Segments))
	for i, seg := range in.Segments {
		segments[i] = domain.TranscriptSegment{
			VideoID:  video.ID,
			Text:     seg.Text,
			StartSec: seg.StartSec,
			EndSec:   seg.EndSec,
		}
		if err := segments[i].Validate(); err != nil {
			return nil, domain.NewValidationError("segments", err.Error(), err)
		}
	}

	var tokenCount, wordCount int
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		videos := s.videos.WithTx(tx)
		words := s.words.WithTx(tx)

		if err := videos.Create(ctx, video); err != nil {
			return err
		}
		if err := videos.AddSegments(ctx, segments); err != nil {
			return err
		}

		var tokens []domain.TranscriptToken
		wordIDs := make(map[string]uuid.UUID)
		linked := make([]uuid.UUID, 0)
		for _, seg := range segments {
			for _, span := range tokenSpans(seg) {
				id, ok := wordIDs[span.text]
				if !ok {
					word, err := words.GetOrCreate(ctx, span.text)
					if err != nil {
						return err
					}
					id = word.ID
					wordIDs[span.text] = id
					linked = append(linked, id)
				}
				tokens = append(tokens, domain.TranscriptToken{
					VideoID:  video.ID,
					WordID:   id,
					Text:     span.text,
					StartSec: span.start,
					EndSec:   span.end,
				})
			}
		}

		if err := videos.AddTokens(ctx, tokens); err != nil {
			return err
		}
		if err := videos.LinkWords(ctx, video.ID, linked); err != nil {
			return err
		}
		tokenCount, wordCount = len(tokens), len(linked)
		return nil
	})
	if err != nil {
		log.Error("failed to import video",
			slog.String("title", video.Title),
			slog.String("error", err.Error()))
		return nil, NewServiceError("video", "import", err)
	}

	log.Info("imported video",
		slog.String("video_id", video.ID.String()),
		slog.Int("segments", len(segments)),
		slog.Int("tokens", tokenCount),
		slog.Int("words", wordCount))
	return video, nil
}

type tokenSpan struct {
	text       string
	start, end int
}

// tokenSpans splits a segment into word tokens that share its duration evenly.
// Boundaries are truncated to whole seconds.
func tokenSpans(seg domain.TranscriptSegment) []tokenSpan {
	words := readability.Words(seg.Text)
	if len(words) == 0 {
		return nil
	}

	step := float64(seg.EndSec-seg.StartSec) / float64(len(words))
	spans := make([]tokenSpan, len(words))
	for i, w := range words {
		spans[i] = tokenSpan{
			text:  w,
			start: int(float64(seg.StartSec) + float64(i)*step),
			end:   int(float64(seg.StartSec) + float64(i+1)*step),
		}
	}
	return spans
}

// Transcript implements VideoService.Transcript
func (s *videoServiceImpl) Transcript(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error) {
	segments, err := s.videos.Segments(ctx, videoID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load transcript",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("video", "transcript", err)
	}
	if len(segments) == 0 {
		return nil, ErrTranscriptNotFound
	}
	return segments, nil
}

// Tokens implements VideoService.Tokens
func (s *videoServiceImpl) Tokens(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error) {
	tokens, err := s.videos.Tokens(ctx, videoID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load tokens",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("video", "tokens", err)
	}
	if len(tokens) == 0 {
		return nil, ErrTokensNotFound
	}
	return tokens, nil
}

// RecommendVideos implements VideoService.RecommendVideos
func (s *videoServiceImpl) RecommendVideos(
	ctx context.Context,
	learnerID uuid.UUID,
	opts recommend.Options,
) ([]domain.VideoUnknownCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learner_id", learnerID.String()))

	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("video", "recommend", err)
	}

	counts, err := s.videos.CountUnknownWords(ctx, learnerID)
	if err != nil {
		log.Error("failed to count unknown words", slog.String("error", err.Error()))
		return nil, NewServiceError("video", "recommend", err)
	}

	ranked := recommend.RankVideos(counts, opts)
	outcome := "ok"
	if len(ranked) == 0 {
		outcome = "empty"
	}
	metrics.Recommendations.WithLabelValues("video", outcome).Inc()

	log.Debug("ranked videos",
		slog.Int("catalog", len(counts)),
		slog.Int("returned", len(ranked)),
		slog.Int("max_unknown", opts.MaxUnknown))
	return ranked, nil
}

// Comprehension implements VideoService.Comprehension
func (s *videoServiceImpl) Comprehension(ctx context.Context, learnerID, videoID uuid.UUID) (*Comprehension, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("video_id", videoID.String()))

	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("video", "comprehension", err)
	}
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("video", "comprehension", err)
	}

	wordIDs, err := s.videos.WordIDs(ctx, videoID)
	if err != nil {
		log.Error("failed to load video words", slog.String("error", err.Error()))
		return nil, NewServiceError("video", "comprehension", err)
	}
	levels, err := s.records.Levels(ctx, learnerID, wordIDs)
	if err != nil {
		log.Error("failed to load mastery levels", slog.String("error", err.Error()))
		return nil, NewServiceError("video", "comprehension", err)
	}

	unknown := recommend.CountUnknown(wordIDs, levels)
	result := &Comprehension{
		VideoID:      videoID,
		TotalWords:   len(wordIDs),
		UnknownWords: unknown,
	}
	if len(wordIDs) > 0 {
		result.KnownRatio = float64(len(wordIDs)-unknown) / float64(len(wordIDs))
	}
	return result, nil
}
