package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/service"
)

// ContentHandler handles reading content and known-word endpoints.
type ContentHandler struct {
	content service.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content service.ContentService, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ContentHandler")
	}
	return &ContentHandler{
		content: content,
		logger:  logger.With(slog.String("component", "content_handler")),
	}
}

// Ingest handles POST /api/content
func (h *ContentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req IngestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	docs := make([]service.CorpusDocument, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = service.CorpusDocument{Title: d.Title, Text: d.Text}
	}

	items, err := h.content.Ingest(r.Context(), docs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to ingest content")
		return
	}

	log.Info("content ingested", slog.Int("count", len(items)))
	resp := make([]ContentResponse, len(items))
	for i, item := range items {
		resp[i] = contentToResponse(item)
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// RecommendByLevel handles GET /api/recommendations/content?level=
func (h *ContentHandler) RecommendByLevel(w http.ResponseWriter, r *http.Request) {
	level, err := getQueryFloat(r, "level")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	item, err := h.content.RecommendByLevel(r.Context(), level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to recommend content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, contentToResponse(*item))
}

// RecommendByCoverage handles GET /api/learners/{learnerID}/recommendations/content
func (h *ContentHandler) RecommendByCoverage(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	match, err := h.content.RecommendByCoverage(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to recommend content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CoverageResponse{
		ContentResponse: contentToResponse(match.Item),
		Coverage:        match.Coverage,
	})
}

// AddKnownWords handles POST /api/learners/{learnerID}/known-words
func (h *ContentHandler) AddKnownWords(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req KnownWordsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	added, err := h.content.AddKnownWords(r.Context(), learnerID, req.Words)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add known words")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, KnownWordsAddedResponse{Added: added})
}

// ListKnownWords handles GET /api/learners/{learnerID}/known-words
func (h *ContentHandler) ListKnownWords(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.content.ListKnownWords(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list known words")
		return
	}
	if words == nil {
		words = []string{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, KnownWordsResponse{Words: words})
}
