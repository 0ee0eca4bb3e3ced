package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/postgres"
	"github.com/phrazzld/wordpath-api/internal/store"
	"github.com/phrazzld/wordpath-api/internal/testdb"
)

func createLearner(t *testing.T, ctx context.Context, tx *sql.Tx, username string) *domain.Learner {
	t.Helper()
	learner, err := domain.NewLearner(username+"-"+uuid.NewString()[:8], "password123")
	require.NoError(t, err)
	learner.HashedPassword = "hash"
	require.NoError(t, postgres.NewPostgresLearnerStore(tx, nil).Create(ctx, learner))
	return learner
}

func TestIntegration_MasteryRoundTrip(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		learner := createLearner(t, ctx, tx, "mastery")
		words := postgres.NewPostgresWordStore(tx, nil)
		mastery := postgres.NewPostgresMasteryStore(tx, nil)

		casa, err := words.GetOrCreate(ctx, "Casa")
		require.NoError(t, err)
		again, err := words.GetOrCreate(ctx, "casa")
		require.NoError(t, err)
		assert.Equal(t, casa.ID, again.ID, "words are shared by normalized text")

		record, err := domain.NewMasteryRecord(learner.ID, casa.ID)
		require.NoError(t, err)
		now := time.Now().UTC().Truncate(time.Microsecond)
		record.SeenCount = 1
		record.LastSeenAt = &now
		record.Level = domain.MasteryLearning
		require.NoError(t, mastery.Upsert(ctx, record))

		got, err := mastery.GetForUpdate(ctx, learner.ID, casa.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SeenCount)
		assert.Equal(t, domain.MasteryLearning, got.Level)

		list, err := mastery.ListMastered(ctx, learner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "casa", list[0].Text)

		orphan, err := domain.NewMasteryRecord(learner.ID, uuid.New())
		require.NoError(t, err)
		assert.ErrorIs(t, mastery.Upsert(ctx, orphan), store.ErrInvalidEntity)
	})
}

func TestIntegration_CountUnknownWords(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		learner := createLearner(t, ctx, tx, "videos")
		words := postgres.NewPostgresWordStore(tx, nil)
		mastery := postgres.NewPostgresMasteryStore(tx, nil)
		videos := postgres.NewPostgresVideoStore(tx, nil)

		hola, err := words.GetOrCreate(ctx, "hola-"+uuid.NewString()[:8])
		require.NoError(t, err)
		adios, err := words.GetOrCreate(ctx, "adios-"+uuid.NewString()[:8])
		require.NoError(t, err)

		record, err := domain.NewMasteryRecord(learner.ID, hola.ID)
		require.NoError(t, err)
		record.Level = domain.MasteryMastered
		require.NoError(t, mastery.Upsert(ctx, record))

		withWords, err := domain.NewVideo("with words", "https://img/1.png", 5)
		require.NoError(t, err)
		require.NoError(t, videos.Create(ctx, withWords))
		require.NoError(t, videos.LinkWords(ctx, withWords.ID, []uuid.UUID{hola.ID, adios.ID}))

		silent, err := domain.NewVideo("silent", "https://img/2.png", 1)
		require.NoError(t, err)
		require.NoError(t, videos.Create(ctx, silent))

		counts, err := videos.CountUnknownWords(ctx, learner.ID)
		require.NoError(t, err)

		byID := make(map[uuid.UUID]int)
		order := make([]uuid.UUID, 0)
		for _, c := range counts {
			if c.Video.ID == withWords.ID || c.Video.ID == silent.ID {
				byID[c.Video.ID] = c.UnknownCount
				order = append(order, c.Video.ID)
			}
		}
		assert.Equal(t, []uuid.UUID{withWords.ID, silent.ID}, order, "catalog order is preserved")
		assert.Equal(t, 1, byID[withWords.ID], "unseen word counts as unknown")
		assert.Equal(t, 0, byID[silent.ID], "a video without words is included with zero")
	})
}
