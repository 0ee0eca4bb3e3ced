package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/platform/logger"
	"github.com/phrazzld/wordpath-api/internal/redact"
	"github.com/phrazzld/wordpath-api/internal/service"
)

// LearnerHandler handles registration and login.
type LearnerHandler struct {
	learners service.LearnerService
	logger   *slog.Logger
}

// NewLearnerHandler creates a new LearnerHandler
func NewLearnerHandler(learners service.LearnerService, logger *slog.Logger) *LearnerHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LearnerHandler")
	}
	return &LearnerHandler{
		learners: learners,
		logger:   logger.With(slog.String("component", "learner_handler")),
	}
}

// Register handles POST /api/learners
func (h *LearnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	learner, err := h.learners.Register(r.Context(), req.Username, req.Password, toQuizAnswers(req.QuizAnswers))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register learner")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, LearnerResponse{
		LearnerID: learner.ID,
		Username:  learner.Username,
	})
}

// Login handles POST /api/learners/login
func (h *LearnerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	learner, err := h.learners.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LearnerResponse{
		LearnerID: learner.ID,
		Username:  learner.Username,
	})
}
