package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound hides both missing records and records the caller may not see.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a transition attempted from the wrong status.
	ErrConflict = errors.New("request is not in a state that allows this action")
	// ErrRateLimited reports an exhausted weekly introduction quota.
	ErrRateLimited = errors.New("weekly introduction limit reached")
	// ErrInsufficientContacts reports a requester below the contribution gate.
	ErrInsufficientContacts = errors.New("upload more contacts before requesting introductions")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError describes malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid(field, "must be a valid id")
	}
	return id, nil
}
