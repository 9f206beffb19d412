package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned when an operation needs a session and there is none
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrUnauthorized is returned when the server rejects the session token
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the session's role may not perform the operation
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the user or record does not exist
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer of the archive API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps statuses onto the client sentinels so callers can use errors.Is
func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	default:
		return nil
	}
}
