package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/service"
	"github.com/phrazzld/wordpath-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var valErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors, including recommendations from an empty catalog
	case store.IsNotFoundError(err),
		errors.Is(err, service.ErrNoContent),
		errors.Is(err, service.ErrTranscriptNotFound),
		errors.Is(err, service.ErrTokensNotFound):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidMasteryLevel),
		errors.As(err, &valErr),
		errors.As(err, &fieldErrs):
		return http.StatusBadRequest

	// Default: internal server error, including dangling records
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var valErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, store.ErrLearnerNotFound):
		return "Learner not found"
	case errors.Is(err, store.ErrWordNotFound):
		return "Word not found"
	case errors.Is(err, store.ErrVideoNotFound):
		return "Video not found"
	case errors.Is(err, service.ErrNoContent):
		return "No content available"
	case errors.Is(err, service.ErrTranscriptNotFound):
		return "Transcript not found"
	case errors.Is(err, service.ErrTokensNotFound):
		return "Tokens not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	// Bad request errors
	case errors.As(err, &fieldErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrInvalidMasteryLevel):
		return "Invalid mastery level"
	case errors.As(err, &valErr):
		// Domain validation messages are written for clients.
		return "Invalid request: " + valErr.Error()
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrDanglingRecord):
		return "Stored data is inconsistent"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. A non-empty fallback replaces
// the generic message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" && !errors.Is(err, store.ErrDanglingRecord) {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "gte", "gtefield":
		return "too small"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}
