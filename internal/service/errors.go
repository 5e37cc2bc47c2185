// Package service provides business logic for the application.
package service

import "errors"

// Service errors. Handlers map these to HTTP status codes.
var (
	// ErrEmailExists is a uniqueness conflict on an admin or user email.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when deleting a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports missing or malformed input.
// Message is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
