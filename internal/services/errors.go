package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the services. Handlers map these to HTTP statuses with errors.Is.
var (
	// ErrValidation is returned when request data is missing or malformed
	ErrValidation = errors.New("validation error")
	// ErrDuplicateUser is returned when the email or username is already registered
	ErrDuplicateUser = errors.New("user already exists")
	// ErrNotFound is returned when the requested user or record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredential is returned for every failed login, whatever the cause
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrForbidden is returned when the caller may not perform the operation
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream is returned when the image host fails
	ErrUpstream = errors.New("image host error")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
