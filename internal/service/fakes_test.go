package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/wordpath-api/internal/cache"
	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/service/auth"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// runInline is a TxRunner that calls fn without a transaction.
func runInline(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

type fakeLearnerStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.Learner
	getErr  error
	creates int
}

func newFakeLearnerStore(learners ...domain.Learner) *fakeLearnerStore {
	s := &fakeLearnerStore{byID: make(map[uuid.UUID]domain.Learner)}
	for _, l := range learners {
		s.byID[l.ID] = l
	}
	return s
}

func (s *fakeLearnerStore) Create(_ context.Context, learner *domain.Learner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.Username == learner.Username {
			return store.ErrUsernameExists
		}
	}
	s.byID[learner.ID] = *learner
	s.creates++
	return nil
}

func (s *fakeLearnerStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	l, ok := s.byID[id]
	if !ok {
		return nil, store.ErrLearnerNotFound
	}
	return &l, nil
}

func (s *fakeLearnerStore) GetByUsername(_ context.Context, username string) (*domain.Learner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byID {
		if l.Username == username {
			return &l, nil
		}
	}
	return nil, store.ErrLearnerNotFound
}

func (s *fakeLearnerStore) WithTx(*sql.Tx) store.LearnerStore { return s }

type fakeWordStore struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]domain.Word
	byText map[string]uuid.UUID
}

func newFakeWordStore(texts ...string) *fakeWordStore {
	s := &fakeWordStore{byID: make(map[uuid.UUID]domain.Word), byText: make(map[string]uuid.UUID)}
	for _, t := range texts {
		_, _ = s.GetOrCreate(context.Background(), t)
	}
	return s
}

func (s *fakeWordStore) GetOrCreate(_ context.Context, text string) (*domain.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := domain.NormalizeWord(text)
	if id, ok := s.byText[normalized]; ok {
		w := s.byID[id]
		return &w, nil
	}
	w, err := domain.NewWord(normalized)
	if err != nil {
		return nil, err
	}
	s.byID[w.ID] = *w
	s.byText[w.Text] = w.ID
	return w, nil
}

func (s *fakeWordStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.byID[id]
	if !ok {
		return nil, store.ErrWordNotFound
	}
	return &w, nil
}

func (s *fakeWordStore) id(text string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byText[text]
}

func (s *fakeWordStore) WithTx(*sql.Tx) store.WordStore { return s }

type recordKey struct{ learner, word uuid.UUID }

// fakeMasteryStore keeps records in memory and rejects records whose word is
// missing from words, like the foreign key does.
type fakeMasteryStore struct {
	mu      sync.Mutex
	records map[recordKey]domain.MasteryRecord
	words   *fakeWordStore
	listErr error
	lists   int
}

func newFakeMasteryStore(words *fakeWordStore) *fakeMasteryStore {
	return &fakeMasteryStore{records: make(map[recordKey]domain.MasteryRecord), words: words}
}

func (s *fakeMasteryStore) Get(_ context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[recordKey{learnerID, wordID}]
	if !ok {
		return nil, store.ErrMasteryRecordNotFound
	}
	return &r, nil
}

func (s *fakeMasteryStore) GetForUpdate(ctx context.Context, learnerID, wordID uuid.UUID) (*domain.MasteryRecord, error) {
	return s.Get(ctx, learnerID, wordID)
}

func (s *fakeMasteryStore) Upsert(ctx context.Context, record *domain.MasteryRecord) error {
	if _, err := s.words.GetByID(ctx, record.WordID); err != nil {
		return store.ErrInvalidEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{record.LearnerID, record.WordID}] = *record
	return nil
}

func (s *fakeMasteryStore) ListMastered(ctx context.Context, learnerID uuid.UUID) ([]domain.MasteredWord, error) {
	s.mu.Lock()
	s.lists++
	listErr := s.listErr
	var recs []domain.MasteryRecord
	for k, r := range s.records {
		if k.learner == learnerID && r.Level >= domain.MasteryLearning {
			recs = append(recs, r)
		}
	}
	s.mu.Unlock()

	if listErr != nil {
		return nil, listErr
	}

	out := make([]domain.MasteredWord, 0, len(recs))
	for _, r := range recs {
		w, err := s.words.GetByID(ctx, r.WordID)
		if err != nil {
			return nil, store.ErrDanglingRecord
		}
		out = append(out, domain.MasteredWord{
			WordID:     r.WordID,
			Text:       w.Text,
			Level:      r.Level,
			SeenCount:  r.SeenCount,
			LastSeenAt: r.LastSeenAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out, nil
}

func (s *fakeMasteryStore) Levels(
	_ context.Context,
	learnerID uuid.UUID,
	wordIDs []uuid.UUID,
) (map[uuid.UUID]domain.MasteryLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	levels := make(map[uuid.UUID]domain.MasteryLevel)
	for _, id := range wordIDs {
		if r, ok := s.records[recordKey{learnerID, id}]; ok {
			levels[id] = r.Level
		}
	}
	return levels, nil
}

func (s *fakeMasteryStore) WithTx(*sql.Tx) store.MasteryStore { return s }

type fakeContentStore struct {
	items     []domain.ContentItem
	listErr   error
	createErr error
	boundTx   bool
}

func (s *fakeContentStore) Create(_ context.Context, item *domain.ContentItem) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *fakeContentStore) WithTx(*sql.Tx) store.ContentStore {
	s.boundTx = true
	return s
}

func (s *fakeContentStore) List(context.Context) ([]domain.ContentItem, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.ContentItem{}, s.items...), nil
}

type fakeKnownWordStore struct {
	words map[uuid.UUID]domain.KnownWordSet
}

func newFakeKnownWordStore() *fakeKnownWordStore {
	return &fakeKnownWordStore{words: make(map[uuid.UUID]domain.KnownWordSet)}
}

func (s *fakeKnownWordStore) Add(_ context.Context, learnerID uuid.UUID, words []string) (int, error) {
	set, ok := s.words[learnerID]
	if !ok {
		set = domain.NewKnownWordSet()
		s.words[learnerID] = set
	}
	before := set.Len()
	for _, w := range words {
		set.Add(w)
	}
	return set.Len() - before, nil
}

func (s *fakeKnownWordStore) List(_ context.Context, learnerID uuid.UUID) ([]string, error) {
	out := make([]string, 0)
	for w := range s.words[learnerID] {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}

type fakeVideoStore struct {
	videos   []domain.Video
	segments []domain.TranscriptSegment
	tokens   []domain.TranscriptToken
	links    map[uuid.UUID][]uuid.UUID
	counts   []domain.VideoUnknownCount
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{links: make(map[uuid.UUID][]uuid.UUID)}
}

func (s *fakeVideoStore) Create(_ context.Context, video *domain.Video) error {
	s.videos = append(s.videos, *video)
	return nil
}

func (s *fakeVideoStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Video, error) {
	for _, v := range s.videos {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, store.ErrVideoNotFound
}

func (s *fakeVideoStore) AddSegments(_ context.Context, segments []domain.TranscriptSegment) error {
	s.segments = append(s.segments, segments...)
	return nil
}

func (s *fakeVideoStore) AddTokens(_ context.Context, tokens []domain.TranscriptToken) error {
	s.tokens = append(s.tokens, tokens...)
	return nil
}

func (s *fakeVideoStore) LinkWords(_ context.Context, videoID uuid.UUID, wordIDs []uuid.UUID) error {
	s.links[videoID] = append(s.links[videoID], wordIDs...)
	return nil
}

func (s *fakeVideoStore) Segments(_ context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error) {
	out := make([]domain.TranscriptSegment, 0)
	for _, seg := range s.segments {
		if seg.VideoID == videoID {
			out = append(out, seg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartSec < out[j].StartSec })
	return out, nil
}

func (s *fakeVideoStore) Tokens(_ context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error) {
	out := make([]domain.TranscriptToken, 0)
	for _, tok := range s.tokens {
		if tok.VideoID == videoID {
			out = append(out, tok)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartSec < out[j].StartSec })
	return out, nil
}

func (s *fakeVideoStore) WordIDs(_ context.Context, videoID uuid.UUID) ([]uuid.UUID, error) {
	return append([]uuid.UUID{}, s.links[videoID]...), nil
}

func (s *fakeVideoStore) CountUnknownWords(context.Context, uuid.UUID) ([]domain.VideoUnknownCount, error) {
	return s.counts, nil
}

func (s *fakeVideoStore) WithTx(*sql.Tx) store.VideoStore { return s }

// MockMasteryCache mocks the MasteryCache interface. MasteredWords calls
// through to load unless a result was configured.
type MockMasteryCache struct {
	mock.Mock
}

func (m *MockMasteryCache) MasteredWords(
	ctx context.Context,
	learnerID uuid.UUID,
	load cache.Loader,
) ([]domain.MasteredWord, error) {
	m.Called(ctx, learnerID)
	return load(ctx)
}

func (m *MockMasteryCache) Invalidate(ctx context.Context, learnerID uuid.UUID) {
	m.Called(ctx, learnerID)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}

func newLearner(username string) domain.Learner {
	now := time.Now().UTC()
	return domain.Learner{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: "hashed:password123",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
