package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrState                 = errors.New("invalid state transition")
	ErrCapacity              = errors.New("capacity exhausted")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
