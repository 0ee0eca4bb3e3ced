package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/domain"
	"github.com/phrazzld/wordpath-api/internal/service"
	"github.com/phrazzld/wordpath-api/internal/store"
)

func TestNewLearnerHandler_NilLogger(t *testing.T) {
	assert.Panics(t, func() { NewLearnerHandler(&mockLearnerService{}, nil) })
}

func TestLearnerHandler_Register(t *testing.T) {
	learnerID := uuid.New()
	wordID := uuid.New()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success with quiz answers",
			body:           `{"username":"ana","password":"password123","quiz_answers":[{"word_id":"` + wordID.String() + `","correct":true}]}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "success without quiz",
			body:           `{"username":"ana","password":"password123"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "short password",
			body:           `{"username":"ana","password":"short"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid password: too short",
		},
		{
			name:           "username taken",
			body:           `{"username":"ana","password":"password123"}`,
			serviceErr:     store.ErrUsernameExists,
			expectedStatus: http.StatusConflict,
			expectedError:  "Username already exists",
		},
		{
			name:           "unknown quiz word",
			body:           `{"username":"ana","password":"password123","quiz_answers":[{"word_id":"` + wordID.String() + `","correct":false}]}`,
			serviceErr:     store.ErrWordNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "Word not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotAnswers []service.QuizAnswer
			svc := &mockLearnerService{
				registerFn: func(ctx context.Context, username, password string, answers []service.QuizAnswer) (*domain.Learner, error) {
					gotAnswers = answers
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &domain.Learner{ID: learnerID, Username: username}, nil
				},
			}
			h := NewLearnerHandler(svc, discardLogger())

			rr := httptest.NewRecorder()
			h.Register(rr, newRequest(http.MethodPost, "/api/learners", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedError != "" {
				resp := decodeBody[shared.ErrorResponse](t, rr)
				assert.Equal(t, tc.expectedError, resp.Error)
				return
			}
			resp := decodeBody[LearnerResponse](t, rr)
			assert.Equal(t, learnerID, resp.LearnerID)
			assert.Equal(t, "ana", resp.Username)
			if tc.name == "success with quiz answers" {
				assert.Equal(t, []service.QuizAnswer{{WordID: wordID, Correct: true}}, gotAnswers)
			}
		})
	}
}

func TestLearnerHandler_Login(t *testing.T) {
	learnerID := uuid.New()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "success", body: `{"username":"ana","password":"password123"}`, expectedStatus: http.StatusOK},
		{name: "missing password", body: `{"username":"ana"}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"username":"ana","password":"x","extra":1}`, expectedStatus: http.StatusBadRequest},
		{
			name:           "bad credentials",
			body:           `{"username":"ana","password":"wrongpass"}`,
			serviceErr:     service.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected failure",
			body:           `{"username":"ana","password":"password123"}`,
			serviceErr:     service.NewServiceError("learner", "Login", errors.New("connection reset")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockLearnerService{
				loginFn: func(ctx context.Context, username, password string) (*domain.Learner, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &domain.Learner{ID: learnerID, Username: username}, nil
				},
			}
			h := NewLearnerHandler(svc, discardLogger())

			rr := httptest.NewRecorder()
			h.Login(rr, newRequest(http.MethodPost, "/api/learners/login", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusInternalServerError {
				resp := decodeBody[shared.ErrorResponse](t, rr)
				assert.Equal(t, "Failed to log in", resp.Error)
				assert.NotContains(t, rr.Body.String(), "connection reset")
			}
		})
	}
}
