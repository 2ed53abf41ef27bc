package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	// Repos also return it for rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is a generic sentinel for unique-key collisions.
	ErrConflict = errors.New("conflict")
)
