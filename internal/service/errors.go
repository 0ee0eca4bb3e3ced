package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNoContent indicates that a recommendation was requested from an
	// empty catalog. API layer should map this to HTTP 404 Not Found.
	ErrNoContent = errors.New("no content available")

	// ErrTranscriptNotFound indicates a video without transcript segments.
	ErrTranscriptNotFound = errors.New("transcript not found")

	// ErrTokensNotFound indicates a video without transcript tokens.
	ErrTokensNotFound = errors.New("tokens not found")

	// ErrInvalidCredentials indicates a login with an unknown username or a
	// wrong password. Both cases share one error so usernames cannot be probed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}
