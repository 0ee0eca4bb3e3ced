package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/wordpath-api/internal/domain"
)

// VideoStore defines the interface for the video catalog and transcripts.
type VideoStore interface {
	// Create saves a new video.
	Create(ctx context.Context, video *domain.Video) error

	// GetByID retrieves a video by ID.
	// Returns ErrVideoNotFound if the video does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)

	// AddSegments saves transcript segments.
	AddSegments(ctx context.Context, segments []domain.TranscriptSegment) error

	// AddTokens saves transcript tokens.
	AddTokens(ctx context.Context, tokens []domain.TranscriptToken) error

	// LinkWords associates words with a video. Existing links are kept.
	LinkWords(ctx context.Context, videoID uuid.UUID, wordIDs []uuid.UUID) error

	// Segments returns a video's transcript ordered by start second.
	Segments(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptSegment, error)

	// Tokens returns a video's tokens with word text, ordered by start second.
	Tokens(ctx context.Context, videoID uuid.UUID) ([]domain.TranscriptToken, error)

	// WordIDs returns the distinct words associated with a video.
	WordIDs(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error)

	// CountUnknownWords returns every catalog video, in catalog order, with
	// the number of its words the learner has no record for or holds at
	// level unknown. Videos without words count zero.
	CountUnknownWords(ctx context.Context, learnerID uuid.UUID) ([]domain.VideoUnknownCount, error)

	// WithTx returns a VideoStore bound to tx.
	WithTx(tx *sql.Tx) VideoStore
}
