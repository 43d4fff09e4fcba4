package api

import "github.com/pkg/errors"

var (
	// ErrPasswordMismatch is returned by Register when the confirmation
	// does not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingField is returned when a required input is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrRejected wraps an explicit refusal from the backend.
	ErrRejected = errors.New("rejected by server")
	// ErrInvalidAmount is returned for a zero water amount.
	ErrInvalidAmount = errors.New("water amount must not be zero")
)
