package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/postgres"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// arrayConverter lets string slices through to the mock the way the pgx
// driver accepts them.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestLearnerStore_Create(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearnerStore(db, nil)

	learner, err := domain.NewLearner("ana", "correct horse")
	require.NoError(t, err)
	learner.HashedPassword = "$2a$10$hash"

	mock.ExpectExec(q("INSERT INTO learners")).
		WithArgs(learner.ID, "ana", "$2a$10$hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Create(context.Background(), learner))
}

func TestLearnerStore_Create_DuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearnerStore(db, nil)

	learner, err := domain.NewLearner("ana", "correct horse")
	require.NoError(t, err)
	learner.HashedPassword = "$2a$10$hash"

	mock.ExpectExec(q("INSERT INTO learners")).WillReturnError(newPgError("23505"))

	err = s.Create(context.Background(), learner)
	assert.ErrorIs(t, err, store.ErrUsernameExists)
}

func TestLearnerStore_Create_RequiresHash(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresLearnerStore(db, nil)

	learner, err := domain.NewLearner("ana", "correct horse")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Create(context.Background(), learner), domain.ErrEmptyHashedPassword)
}

func TestLearnerStore_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearnerStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery(q("FROM learners")).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrLearnerNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestLearnerStore_GetByUsername(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearnerStore(db, nil)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(q("WHERE username = $1")).WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "hashed_password", "created_at", "updated_at"}).
			AddRow(id.String(), "ana", "hash", now, now))

	learner, err := s.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, id, learner.ID)
	assert.Equal(t, "hash", learner.HashedPassword)
}

func TestWordStore_GetOrCreate_NormalizesText(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresWordStore(db, nil)
	existing := uuid.New()

	mock.ExpectQuery(q("ON CONFLICT (text) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "casa", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_at"}).
			AddRow(existing.String(), "casa", time.Now()))

	word, err := s.GetOrCreate(context.Background(), "  Casa ")
	require.NoError(t, err)
	assert.Equal(t, existing, word.ID, "an existing word keeps its ID")
	assert.Equal(t, "casa", word.Text)
}

func TestWordStore_GetOrCreate_RejectsBlank(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresWordStore(db, nil)

	_, err := s.GetOrCreate(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyWordText)
}

func TestMasteryStore_GetForUpdate_LocksRow(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)
	learnerID, wordID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(learnerID, wordID).
		WillReturnRows(sqlmock.NewRows([]string{
			"learner_id", "word_id", "seen_count", "last_seen_at", "mastery_level", "created_at", "updated_at",
		}).AddRow(learnerID.String(), wordID.String(), 3, now, 1, now, now))

	record, err := s.GetForUpdate(context.Background(), learnerID, wordID)
	require.NoError(t, err)
	assert.Equal(t, 3, record.SeenCount)
	assert.Equal(t, domain.MasteryLearning, record.Level)
	require.NotNil(t, record.LastSeenAt)
	assert.True(t, now.Equal(*record.LastSeenAt))
}

func TestMasteryStore_Get_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)
	learnerID, wordID := uuid.New(), uuid.New()

	mock.ExpectQuery(q("FROM mastery_records")).WithArgs(learnerID, wordID).WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), learnerID, wordID)
	assert.ErrorIs(t, err, store.ErrMasteryRecordNotFound)
}

func TestMasteryStore_Upsert(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)

	record, err := domain.NewMasteryRecord(uuid.New(), uuid.New())
	require.NoError(t, err)
	record.Level = domain.MasteryMastered

	mock.ExpectExec(q("ON CONFLICT (learner_id, word_id) DO UPDATE")).
		WithArgs(record.LearnerID, record.WordID, 0, nil, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, s.Upsert(context.Background(), record))
}

func TestMasteryStore_Upsert_MissingWord(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)

	record, err := domain.NewMasteryRecord(uuid.New(), uuid.New())
	require.NoError(t, err)

	mock.ExpectExec(q("INSERT INTO mastery_records")).WillReturnError(newPgError("23503"))

	assert.ErrorIs(t, s.Upsert(context.Background(), record), store.ErrInvalidEntity)
}

func TestMasteryStore_ListMastered(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)
	learnerID := uuid.New()
	w1, w2 := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(q("LEFT JOIN words")).WithArgs(learnerID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"word_id", "text", "mastery_level", "seen_count", "last_seen_at"}).
			AddRow(w1.String(), "casa", 1, 2, now).
			AddRow(w2.String(), "perro", 2, 0, nil))

	words, err := s.ListMastered(context.Background(), learnerID)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "casa", words[0].Text)
	assert.Equal(t, domain.MasteryLearning, words[0].Level)
	assert.Equal(t, domain.MasteryMastered, words[1].Level)
	assert.Nil(t, words[1].LastSeenAt, "an overridden, never-seen record has no last seen time")
}

func TestMasteryStore_ListMastered_Empty(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)

	mock.ExpectQuery(q("FROM mastery_records mr")).
		WillReturnRows(sqlmock.NewRows([]string{"word_id", "text", "mastery_level", "seen_count", "last_seen_at"}))

	words, err := s.ListMastered(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

func TestMasteryStore_ListMastered_DanglingRecord(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)

	mock.ExpectQuery(q("LEFT JOIN words")).
		WillReturnRows(sqlmock.NewRows([]string{"word_id", "text", "mastery_level", "seen_count", "last_seen_at"}).
			AddRow(uuid.New().String(), nil, 1, 1, nil))

	_, err := s.ListMastered(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrDanglingRecord)
}

func TestMasteryStore_Levels(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)
	learnerID := uuid.New()
	known, unseen := uuid.New(), uuid.New()

	mock.ExpectQuery(q("word_id = ANY($2::uuid[])")).
		WithArgs(learnerID, []string{known.String(), unseen.String()}).
		WillReturnRows(sqlmock.NewRows([]string{"word_id", "mastery_level"}).AddRow(known.String(), 2))

	levels, err := s.Levels(context.Background(), learnerID, []uuid.UUID{known, unseen})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]domain.MasteryLevel{known: domain.MasteryMastered}, levels)
}

func TestMasteryStore_Levels_NoWords(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresMasteryStore(db, nil)

	levels, err := s.Levels(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestContentStore_ListInCatalogOrder(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresContentStore(db, nil)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(q("ORDER BY seq")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "text", "grade_level", "created_at"}).
			AddRow(a.String(), "first", "The cat sat.", -2.62, time.Now()).
			AddRow(b.String(), "second", "Hello world.", 2.89, time.Now()))

	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a, items[0].ID)
	assert.InDelta(t, 2.89, items[1].GradeLevel, 1e-9)
}

func TestKnownWordStore_Add(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresKnownWordStore(db, nil)
	learnerID := uuid.New()

	mock.ExpectExec(q("INSERT INTO known_words")).WithArgs(learnerID, "hola").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO known_words")).WithArgs(learnerID, "adios").
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := s.Add(context.Background(), learnerID, []string{" Hola", "", "ADIOS"})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "blank and already-known words are not counted")
}

func TestKnownWordStore_List(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresKnownWordStore(db, nil)
	learnerID := uuid.New()

	mock.ExpectQuery(q("FROM known_words")).WithArgs(learnerID).
		WillReturnRows(sqlmock.NewRows([]string{"word"}).AddRow("adios").AddRow("hola"))

	words, err := s.List(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"adios", "hola"}, words)
}

func TestVideoStore_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresVideoStore(db, nil)
	id := uuid.New()

	mock.ExpectQuery(q("FROM videos WHERE id = $1")).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrVideoNotFound)
}

func TestVideoStore_CountUnknownWords(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresVideoStore(db, nil)
	learnerID := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(q("COUNT(vw.word_id) FILTER")).WithArgs(learnerID, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "thumbnail_url", "score", "created_at", "unknown_count",
		}).
			AddRow(v1.String(), "Intro", "https://img/1.png", 10, now, 1).
			AddRow(v2.String(), "Silent", "https://img/2.png", 3, now, 0))

	counts, err := s.CountUnknownWords(context.Background(), learnerID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, v1, counts[0].Video.ID)
	assert.Equal(t, 1, counts[0].UnknownCount)
	assert.Equal(t, 0, counts[1].UnknownCount, "a video without words counts zero")
}

func TestVideoStore_AddSegments_ValidatesSpan(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresVideoStore(db, nil)

	err := s.AddSegments(context.Background(), []domain.TranscriptSegment{
		{VideoID: uuid.New(), Text: "hola", StartSec: 5, EndSec: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeSpan)
}

func TestVideoStore_Tokens(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresVideoStore(db, nil)
	videoID, wordID := uuid.New(), uuid.New()

	mock.ExpectQuery(q("FROM transcript_tokens t")).WithArgs(videoID).
		WillReturnRows(sqlmock.NewRows([]string{"video_id", "word_id", "text", "start_sec", "end_sec"}).
			AddRow(videoID.String(), wordID.String(), "hola", 0, 1))

	tokens, err := s.Tokens(context.Background(), videoID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "hola", tokens[0].Text)
	assert.Equal(t, wordID, tokens[0].WordID)
}

func TestStoresWithTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	assert.NotNil(t, postgres.NewPostgresLearnerStore(db, nil).WithTx(tx))
	assert.NotNil(t, postgres.NewPostgresWordStore(db, nil).WithTx(tx))
	assert.NotNil(t, postgres.NewPostgresMasteryStore(db, nil).WithTx(tx))
	assert.NotNil(t, postgres.NewPostgresVideoStore(db, nil).WithTx(tx))
	assert.NotNil(t, postgres.NewPostgresContentStore(db, nil).WithTx(tx))
}

func TestContentStore_CreateInTx(t *testing.T) {
	db, mock := newMock(t)
	item, err := domain.NewContentItem("short", "The cat sat.", -2.62)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO content_items")).
		WithArgs(item.ID, "short", "The cat sat.", -2.62, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return postgres.NewPostgresContentStore(db, nil).WithTx(tx).Create(ctx, item)
	})
	assert.NoError(t, err)
}

func TestNewStores_NilDBPanics(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresLearnerStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresWordStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresMasteryStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresContentStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresKnownWordStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresVideoStore(nil, nil) })
}
