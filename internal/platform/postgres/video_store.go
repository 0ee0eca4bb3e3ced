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

// PostgresVideoStore implements the store.VideoStore interface.
type PostgresVideoStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVideoStore creates a new PostgreSQL implementation of the VideoStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresVideoStore(db store.DBTX, logger *slog.Logger) *PostgresVideoStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVideoStore{
		db:     db,
		logger: logger.With(slog.String("component", "video_store")),
	}
}

var _ store.VideoStore = (*PostgresVideoStore)(nil)

// Create implements store.VideoStore.Create
func (s *PostgresVideoStore) Create(ctx context.Context, video *domain.Video) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := video.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, title, thumbnail_url, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, video.ID, video.Title, video.ThumbnailURL, video.Score, video.CreatedAt)
	if err != nil {
		log.Error("failed to insert video",
			slog.String("video_id", video.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.VideoStore.GetByID
func (s *PostgresVideoStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var video domain.Video
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, thumbnail_url, score, created_at FROM videos WHERE id = $1
	`, id).Scan(&video.ID, &video.Title, &video.ThumbnailURL, &video.Score, &video.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get video",
				slog.String("video_id", id.String()),
				slog.String("error", err.Error()))
		}
		return nil, mapNotFound(err, store.ErrVideoNotFound)
	}

	return &video, nil
}

// AddSegments implements store.VideoStore.AddSegments
func (s *PostgresVideoStore) AddSegments(ctx context.Context, segments []domain.TranscriptSegment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i := range segments {
		seg := &segments[i]
		if err := seg.Validate(); err != nil {
			return err
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO transcript_segments (video_id, text, start_sec, end_sec)
			VALUES ($1, $2, $3, $4)
		`, seg.VideoID, seg.Text, seg.StartSec, seg.EndSec)
		if err != nil {
			log.Error("failed to insert transcript segment",
				slog.String("video_id", seg.VideoID.String()),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}

	return nil
}

// AddTokens implements store.VideoStore.AddTokens
func (s *PostgresVideoStore) AddTokens(ctx context.Context, tokens []domain.TranscriptToken) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for i := range tokens {
		tok := &tokens[i]
		if err := tok.Validate(); err != nil {
			return err
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO transcript_tokens (video_id, word_id, start_sec, end_sec)
			VALUES ($1, $2, $3, $4)
		`, tok.VideoID, tok.WordID, tok.StartSec, tok.EndSec)
		if err != nil {
			log.Error("failed to insert transcript token",
				slog.String("video_id", tok.VideoID.String()),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}

	return nil
}

// LinkWords implements store.VideoStore.LinkWords
func (s *PostgresVideoStore) LinkWords(ctx context.Context, videoID uuid.UUID, wordIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, wordID := range wordIDs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO video_words (video_id, word_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, videoID, wordID)
		if err != nil {
			log.Error("failed to link word to video",
				slog.String("video_id", videoID.String()),
				slog.String("word_id", wordID.String()),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}

	return nil
}

// Segments implements store.VideoStore.Segments
func (s *PostgresVideoStore) Segments(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, text, start_sec, end_sec
		FROM transcript_segments
		WHERE video_id = $1
		ORDER BY start_sec, id
	`, videoID)
	if err != nil {
		log.Error("failed to query transcript segments",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	segments := make([]domain.TranscriptSegment, 0)
	for rows.Next() {
		var seg domain.TranscriptSegment
		if err := rows.Scan(&seg.VideoID, &seg.Text, &seg.StartSec, &seg.EndSec); err != nil {
			return nil, MapError(err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return segments, nil
}

// Tokens implements store.VideoStore.Tokens
func (s *PostgresVideoStore) Tokens(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.video_id, t.word_id, w.text, t.start_sec, t.end_sec
		FROM transcript_tokens t
		JOIN words w ON w.id = t.word_id
		WHERE t.video_id = $1
		ORDER BY t.start_sec, t.id
	`, videoID)
	if err != nil {
		log.Error("failed to query transcript tokens",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	tokens := make([]domain.TranscriptToken, 0)
	for rows.Next() {
		var tok domain.TranscriptToken
		if err := rows.Scan(&tok.VideoID, &tok.WordID, &tok.Text, &tok.StartSec, &tok.EndSec); err != nil {
			return nil, MapError(err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tokens, nil
}

// WordIDs implements store.VideoStore.WordIDs
func (s *PostgresVideoStore) WordIDs(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT word_id FROM video_words WHERE video_id = $1
	`, videoID)
	if err != nil {
		log.Error("failed to query video words",
			slog.String("video_id", videoID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return ids, nil
}

// CountUnknownWords implements store.VideoStore.CountUnknownWords
//
// Both joins are LEFT JOINs: a video without words yields one row with a
// NULL word_id, which COUNT skips, so it is reported with zero unknowns. A
// word the learner has no record for counts as unknown.
func (s *PostgresVideoStore) CountUnknownWords(ctx context.Context, learnerID uuid.UUID) ([]domain.VideoUnknownCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.title, v.thumbnail_url, v.score, v.created_at,
			COUNT(vw.word_id) FILTER (
				WHERE mr.word_id IS NULL OR mr.mastery_level = $2
			) AS unknown_count
		FROM videos v
		LEFT JOIN video_words vw ON vw.video_id = v.id
		LEFT JOIN mastery_records mr
			ON mr.word_id = vw.word_id AND mr.learner_id = $1
		GROUP BY v.id
		ORDER BY v.seq
	`, learnerID, int(domain.MasteryUnknown))
	if err != nil {
		log.Error("failed to count unknown words per video",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	counts := make([]domain.VideoUnknownCount, 0)
	for rows.Next() {
		var c domain.VideoUnknownCount
		if err := rows.Scan(
			&c.Video.ID,
			&c.Video.Title,
			&c.Video.ThumbnailURL,
			&c.Video.Score,
			&c.Video.CreatedAt,
			&c.UnknownCount,
		); err != nil {
			log.Error("failed to scan video unknown count", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return counts, nil
}

// WithTx implements store.VideoStore.WithTx
func (s *PostgresVideoStore) WithTx(tx *sql.Tx) store.VideoStore {
	return &PostgresVideoStore{db: tx, logger: s.logger}
}
