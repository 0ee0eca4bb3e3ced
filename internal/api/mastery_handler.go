package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/service"
)

// MasteryHandler handles quiz submissions and the learner's word list.
type MasteryHandler struct {
	mastery service.MasteryService
	logger  *slog.Logger
}

// NewMasteryHandler creates a new MasteryHandler
func NewMasteryHandler(mastery service.MasteryService, logger *slog.Logger) *MasteryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MasteryHandler")
	}
	return &MasteryHandler{
		mastery: mastery,
		logger:  logger.With(slog.String("component", "mastery_handler")),
	}
}

// SubmitQuiz handles POST /api/learners/{learnerID}/quiz
func (h *MasteryHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req QuizRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	records, err := h.mastery.SubmitQuiz(r.Context(), learnerID, toQuizAnswers(req.Answers))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record quiz")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuizResponse{Status: "recorded", Recorded: len(records)})
}

// MasteredWords handles GET /api/learners/{learnerID}/words
func (h *MasteryHandler) MasteredWords(w http.ResponseWriter, r *http.Request) {
	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.mastery.MasteredWords(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load words")
		return
	}

	resp := make([]MasteredWordResponse, len(words))
	for i, word := range words {
		resp[i] = masteredWordToResponse(word)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// SetMastery handles PATCH /api/learners/{learnerID}/words/{wordID}
func (h *MasteryHandler) SetMastery(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, err := getPathUUID(r, "learnerID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	wordID, err := getPathUUID(r, "wordID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SetMasteryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	level, err := domain.ParseMasteryLevel(req.MasteryLevel)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	word, err := h.mastery.SetMastery(r.Context(), learnerID, wordID, level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update word")
		return
	}

	log.Debug("mastery level updated",
		slog.String("learner_id", learnerID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("level", level.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, masteredWordToResponse(*word))
}
