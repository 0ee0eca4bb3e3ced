package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/recommend"
	"github.com/phrazzld/wordpath-api/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest builds a request with chi URL params given as name/value pairs.
func newRequest(method, target, body string, params ...string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

type mockLearnerService struct {
	registerFn func(ctx context.Context, username, password string, answers []service.QuizAnswer) (*domain.Learner, error)
	loginFn    func(ctx context.Context, username, password string) (*domain.Learner, error)
}

func (m *mockLearnerService) Register(
	ctx context.Context,
	username, password string,
	answers []service.QuizAnswer,
) (*domain.Learner, error) {
	return m.registerFn(ctx, username, password, answers)
}

func (m *mockLearnerService) Login(ctx context.Context, username, password string) (*domain.Learner, error) {
	return m.loginFn(ctx, username, password)
}

type mockMasteryService struct {
	submitQuizFn    func(ctx context.Context, learnerID uuid.UUID, answers []service.QuizAnswer) ([]domain.MasteryRecord, error)
	setMasteryFn    func(ctx context.Context, learnerID, wordID uuid.UUID, level domain.MasteryLevel) (*domain.MasteredWord, error)
	masteredWordsFn func(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error)
}

func (m *mockMasteryService) RecordInteraction(
	ctx context.Context,
	learnerID, wordID uuid.UUID,
	correct bool,
) (*domain.MasteryRecord, error) {
	records, err := m.submitQuizFn(ctx, learnerID, []service.QuizAnswer{{WordID: wordID, Correct: correct}})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (m *mockMasteryService) SubmitQuiz(
	ctx context.Context,
	learnerID uuid.UUID,
	answers []service.QuizAnswer,
) ([]domain.MasteryRecord, error) {
	return m.submitQuizFn(ctx, learnerID, answers)
}

func (m *mockMasteryService) SetMastery(
	ctx context.Context,
	learnerID, wordID uuid.UUID,
	level domain.MasteryLevel,
) (*domain.MasteredWord, error) {
	return m.setMasteryFn(ctx, learnerID, wordID, level)
}

func (m *mockMasteryService) MasteredWords(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error) {
	return m.masteredWordsFn(ctx, learnerID)
}

type mockContentService struct {
	ingestFn     func(ctx context.Context, docs []service.CorpusDocument) ([]domain.ContentItem, error)
	byLevelFn    func(ctx context.Context, level float64) (*domain.ContentItem, error)
	byCoverageFn func(ctx context.Context, learnerID uuid.UUID) (*recommend.CoverageMatch, error)
	addKnownFn   func(ctx context.Context, learnerID uuid.UUID, words []string) (int, error)
	listKnownFn  func(ctx context.Context, learnerID uuid.UUID) ([]string, error)
}

func (m *mockContentService) Ingest(ctx context.Context, docs []service.CorpusDocument) ([]domain.ContentItem, error) {
	return m.ingestFn(ctx, docs)
}

func (m *mockContentService) RecommendByLevel(ctx context.Context, level float64) (*domain.ContentItem, error) {
	return m.byLevelFn(ctx, level)
}

func (m *mockContentService) RecommendByCoverage(
	ctx context.Context,
	learnerID uuid.UUID,
) (*recommend.CoverageMatch, error) {
	return m.byCoverageFn(ctx, learnerID)
}

func (m *mockContentService) AddKnownWords(ctx context.Context, learnerID uuid.UUID, words []string) (int, error) {
	return m.addKnownFn(ctx, learnerID, words)
}

func (m *mockContentService) ListKnownWords(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	return m.listKnownFn(ctx, learnerID)
}

type mockVideoService struct {
	importFn        func(ctx context.Context, in service.VideoImport) (*domain.Video, error)
	transcriptFn    func(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error)
	tokensFn        func(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error)
	recommendFn     func(ctx context.Context, learnerID uuid.UUID, opts recommend.Options) ([]domain.VideoUnknownCount, error)
	comprehensionFn func(ctx context.Context, learnerID, videoID uuid.UUID) (*service.Comprehension, error)
}

func (m *mockVideoService) ImportVideo(ctx context.Context, in service.VideoImport) (*domain.Video, error) {
	return m.importFn(ctx, in)
}

func (m *mockVideoService) Transcript(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error) {
	return m.transcriptFn(ctx, videoID)
}

func (m *mockVideoService) Tokens(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error) {
	return m.tokensFn(ctx, videoID)
}

func (m *mockVideoService) RecommendVideos(
	ctx context.Context,
	learnerID uuid.UUID,
	opts recommend.Options,
) ([]domain.VideoUnknownCount, error) {
	return m.recommendFn(ctx, learnerID, opts)
}

func (m *mockVideoService) Comprehension(ctx context.Context, learnerID, videoID uuid.UUID) (*service.Comprehension, error) {
	return m.comprehensionFn(ctx, learnerID, videoID)
}
