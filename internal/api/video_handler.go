package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/recommend"
	"github.com/phrazzld/wordpath-api/internal/service"
)

// VideoHandler handles the video catalog, transcripts and recommendations.
type VideoHandler struct {
	videos   service.VideoService
	defaults recommend.Options
	logger   *slog.Logger
}

// NewVideoHandler creates a new VideoHandler. defaults apply when a
// recommendation request omits limit or max_unknown.
func NewVideoHandler(videos service.VideoService, defaults recommend.Options, logger *slog.Logger) *VideoHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for VideoHandler")
	}
	return &VideoHandler{
		videos:   videos,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "video_handler")),
	}
}

// ImportVideo handles POST /api/videos
func (h *VideoHandler) ImportVideo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ImportVideoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	in := service.VideoImport{
		Title:        req.Title,
		ThumbnailURL: req.ThumbnailURL,
		Score:        req.Score,
		Segments:     make([]service.SegmentInput, len(req.Segments)),
	}
	for i, s := range req.Segments {
		in.Segments[i] = service.SegmentInput{Text: s.Text, StartSec: s.StartSec, EndSec: s.EndSec}
	}

	video, err := h.videos.ImportVideo(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import video")
		return
	}

	log.Info("video imported",
		slog.String("video_id", video.ID.String()),
		slog.Int("segments", len(in.Segments)))
	shared.RespondWithJSON(w, r, http.StatusCreated, videoToResponse(*video))
}

// Transcript handles GET /api/videos/{videoID}/transcript
func (h *VideoHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	videoID, err := getPathUUID(r, "videoID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	segments, err := h.videos.Transcript(r.Context(), videoID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load transcript")
		return
	}

	resp := make([]SegmentResponse, len(segments))
	for i, s := range segments {
		resp[i] = SegmentResponse{Text: s.Text, StartSec: s.StartSec, EndSec: s.EndSec}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Tokens handles GET /api/videos/{videoID}/tokens
func (h *VideoHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	videoID, err := getPathUUID(r, "videoID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tokens, err := h.videos.Tokens(r.Context(), videoID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tokens")
		return
	}

	resp := make([]TokenResponse, len(tokens))
	for i, t := range tokens {
		resp[i] = TokenResponse{WordID: t.WordID, Text: t.Text, StartSec: t.StartSec, EndSec: t.EndSec}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Recommend handles GET /api/learners/{learnerID}/recommendations/videos
func (h *VideoHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	opts := h.defaults
	if opts.Limit, err = getQueryInt(r, "limit", h.defaults.Limit); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if opts.MaxUnknown, err = getQueryInt(r, "max_unknown", h.defaults.MaxUnknown); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ranked, err := h.videos.RecommendVideos(r.Context(), learnerID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to recommend videos")
		return
	}

	resp := make([]RecommendedVideoResponse, len(ranked))
	for i, v := range ranked {
		resp[i] = RecommendedVideoResponse{
			VideoResponse: videoToResponse(v.Video),
			NewWordCount:  v.UnknownCount,
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Comprehension handles GET /api/learners/{learnerID}/videos/{videoID}/comprehension
func (h *VideoHandler) Comprehension(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	videoID, err := getPathUUID(r, "videoID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.videos.Comprehension(r.Context(), learnerID, videoID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute comprehension")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
