package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for videos and transcripts
var (
	ErrEmptyVideoID       = errors.New("video ID cannot be empty")
	ErrEmptyVideoTitle    = errors.New("video title cannot be empty")
	ErrEmptyThumbnailURL  = errors.New("video thumbnail URL cannot be empty")
	ErrInvalidTimeSpan    = errors.New("end second must not precede start second")
	ErrEmptySegmentText   = errors.New("transcript segment text cannot be empty")
	ErrNegativeStartRange = errors.New("start second cannot be negative")
)

// Video is a catalog entry. Score is an externally assigned popularity
// value; higher ranks first.
type Video struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewVideo creates a Video with a fresh ID.
func NewVideo(title, thumbnailURL string, score int) (*Video, error) {
	video := &Video{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		ThumbnailURL: strings.TrimSpace(thumbnailURL),
		Score:        score,
		CreatedAt:    time.Now().UTC(),
	}

	if err := video.Validate(); err != nil {
		return nil, err
	}

	return video, nil
}

// Validate checks if the Video has valid data.
func (v *Video) Validate() error {
	if v.ID == uuid.Nil {
		return ErrEmptyVideoID
	}
	if v.Title == "" {
		return ErrEmptyVideoTitle
	}
	if v.ThumbnailURL == "" {
		return ErrEmptyThumbnailURL
	}
	return nil
}

// TranscriptSegment is a timed line of a video's transcript.
type TranscriptSegment struct {
	VideoID  uuid.UUID `json:"video_id"`
	Text     string    `json:"text"`
	StartSec int       `json:"start_sec"`
	EndSec   int       `json:"end_sec"`
}

// Validate checks the segment's text and time span.
func (s *TranscriptSegment) Validate() error {
	if s.VideoID == uuid.Nil {
		return ErrEmptyVideoID
	}
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptySegmentText
	}
	return validateSpan(s.StartSec, s.EndSec)
}

// TranscriptToken is a single word occurrence inside a video transcript.
type TranscriptToken struct {
	VideoID  uuid.UUID `json:"video_id"`
	WordID   uuid.UUID `json:"word_id"`
	Text     string    `json:"text"`
	StartSec int       `json:"start_sec"`
	EndSec   int       `json:"end_sec"`
}

// Validate checks the token's references and time span.
func (t *TranscriptToken) Validate() error {
	if t.VideoID == uuid.Nil {
		return ErrEmptyVideoID
	}
	if t.WordID == uuid.Nil {
		return ErrEmptyWordID
	}
	return validateSpan(t.StartSec, t.EndSec)
}

func validateSpan(start, end int) error {
	if start < 0 {
		return ErrNegativeStartRange
	}
	if end < start {
		return ErrInvalidTimeSpan
	}
	return nil
}

// VideoUnknownCount pairs a catalog video with the number of its associated
// words the learner has not yet started learning.
type VideoUnknownCount struct {
	Video        Video
	UnknownCount int
}
