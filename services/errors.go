package services

import "errors"

// Error taxonomy: validation and ownership errors are rejected synchronously
// and surfaced to the caller; scrape and external-service failures are
// recorded and retried on the next scheduled run instead.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotOwner           = errors.New("caller does not own this resource")
	ErrNotFound           = errors.New("not found")
	ErrSessionFull        = errors.New("session is at capacity")
	ErrSessionClosed      = errors.New("session is not open for registration")
	ErrAlreadyRegistered  = errors.New("child already registered for session")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrNoExtractionMethod = errors.New("source has no extraction method")
)
