package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRawOutcome is returned when a raw review signal is
	// malformed: missing required fields, both forms populated, or a
	// self-rating outside [0,5].
	ErrInvalidRawOutcome = errors.New("invalid raw review outcome")
)
