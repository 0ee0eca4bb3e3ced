package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/service"
)

// QuizAnswerRequest is one answered quiz question.
type QuizAnswerRequest struct {
	WordID  uuid.UUID `json:"word_id" validate:"required"`
	Correct bool      `json:"correct"`
}

// RegisterRequest defines the payload for learner registration. Placement
// quiz answers are optional.
type RegisterRequest struct {
	Username    string              `json:"username"     validate:"required,max=64"`
	Password    string              `json:"password"     validate:"required,min=8,max=72"`
	QuizAnswers []QuizAnswerRequest `json:"quiz_answers" validate:"omitempty,dive"`
}

// LoginRequest defines the payload for learner login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LearnerResponse identifies a learner.
type LearnerResponse struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Username  string    `json:"username"`
}

// QuizRequest defines the payload for a quiz submission.
type QuizRequest struct {
	Answers []QuizAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// QuizResponse reports how many answers were recorded.
type QuizResponse struct {
	Status   string `json:"status"`
	Recorded int    `json:"recorded"`
}

// SetMasteryRequest defines the payload for overriding a word's level.
type SetMasteryRequest struct {
	MasteryLevel string `json:"mastery_level" validate:"required,oneof=unknown learning mastered"`
}

// MasteredWordResponse is one entry of the mastered-words projection.
// LastSeenAt is RFC 3339 or null.
type MasteredWordResponse struct {
	WordID       uuid.UUID `json:"word_id"`
	Text         string    `json:"text"`
	MasteryLevel string    `json:"mastery_level"`
	SeenCount    int       `json:"seen_count"`
	LastSeenAt   *string   `json:"last_seen_at"`
}

// KnownWordsRequest defines the payload for adding known words.
type KnownWordsRequest struct {
	Words []string `json:"words" validate:"required,min=1"`
}

// KnownWordsAddedResponse reports how many words were new.
type KnownWordsAddedResponse struct {
	Added int `json:"added"`
}

// KnownWordsResponse lists a learner's known words.
type KnownWordsResponse struct {
	Words []string `json:"words"`
}

// IngestRequest defines the payload for content ingestion.
type IngestRequest struct {
	Documents []DocumentRequest `json:"documents" validate:"required,min=1,dive"`
}

// DocumentRequest is one document to ingest.
type DocumentRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" validate:"required"`
}

// ContentResponse describes a catalog item.
type ContentResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	GradeLevel float64   `json:"grade_level"`
	CreatedAt  time.Time `json:"created_at"`
}

// CoverageResponse is a content item with the learner's known-word coverage.
type CoverageResponse struct {
	ContentResponse
	Coverage float64 `json:"coverage"`
}

// ImportVideoRequest defines the payload for importing a video.
type ImportVideoRequest struct {
	Title        string           `json:"title"         validate:"required"`
	ThumbnailURL string           `json:"thumbnail_url" validate:"required,url"`
	Score        int              `json:"score"`
	Segments     []SegmentRequest `json:"segments"      validate:"dive"`
}

// SegmentRequest is one timed transcript line.
type SegmentRequest struct {
	Text     string `json:"text"      validate:"required"`
	StartSec int    `json:"start_sec" validate:"gte=0"`
	EndSec   int    `json:"end_sec"   validate:"gtefield=StartSec"`
}

// VideoResponse describes a catalog video.
type VideoResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Score        int       `json:"score"`
}

// RecommendedVideoResponse is a ranked video with its unknown-word count.
type RecommendedVideoResponse struct {
	VideoResponse
	NewWordCount int `json:"new_word_count"`
}

// SegmentResponse is one transcript line.
type SegmentResponse struct {
	Text     string `json:"text"`
	StartSec int    `json:"start_sec"`
	EndSec   int    `json:"end_sec"`
}

// TokenResponse is one transcript word occurrence.
type TokenResponse struct {
	WordID   uuid.UUID `json:"word_id"`
	Text     string    `json:"text"`
	StartSec int       `json:"start_sec"`
	EndSec   int       `json:"end_sec"`
}

func toQuizAnswers(reqs []QuizAnswerRequest) []service.QuizAnswer {
	answers := make([]service.QuizAnswer, len(reqs))
	for i, a := range reqs {
		answers[i] = service.QuizAnswer{WordID: a.WordID, Correct: a.Correct}
	}
	return answers
}

func masteredWordToResponse(w domain.MasteredWord) MasteredWordResponse {
	resp := MasteredWordResponse{
		WordID:       w.WordID,
		Text:         w.Text,
		MasteryLevel: w.Level.String(),
		SeenCount:    w.SeenCount,
	}
	if w.LastSeenAt != nil {
		ts := w.LastSeenAt.UTC().Format(time.RFC3339)
		resp.LastSeenAt = &ts
	}
	return resp
}

func contentToResponse(item domain.ContentItem) ContentResponse {
	return ContentResponse{
		ID:         item.ID,
		Title:      item.Title,
		Text:       item.Text,
		GradeLevel: item.GradeLevel,
		CreatedAt:  item.CreatedAt,
	}
}

func videoToResponse(v domain.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID,
		Title:        v.Title,
		ThumbnailURL: v.ThumbnailURL,
		Score:        v.Score,
	}
}
