package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for Learner
var (
	ErrEmptyLearnerID      = errors.New("learner ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 64 characters long")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	maxUsernameLength = 64
)

// Learner is a registered user whose vocabulary is tracked.
type Learner struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewLearner creates a Learner with a fresh ID. The caller must hash the
// password before the learner is persisted.
func NewLearner(username, password string) (*Learner, error) {
	now := time.Now().UTC()
	learner := &Learner{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := learner.Validate(); err != nil {
		return nil, err
	}

	return learner, nil
}

// Validate checks if the Learner has valid data.
func (l *Learner) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLearnerID
	}

	if l.Username == "" {
		return ErrEmptyUsername
	}

	if len(l.Username) > maxUsernameLength {
		return ErrUsernameTooLong
	}

	if l.Password != "" {
		if len(l.Password) < minPasswordLength {
			return ErrPasswordTooShort
		}
		if len(l.Password) > maxPasswordLength {
			return ErrPasswordTooLong
		}
		return nil
	}

	// Persisted learners carry only the hash.
	if l.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}
