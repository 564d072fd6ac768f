package domain

import "errors"

// Storage errors. Adapters wrap these together with the underlying cause,
// so callers match with errors.Is.
var (
	// ErrNotOpen indicates an operation was attempted before Open or after Close.
	ErrNotOpen = errors.New("storage not open")

	// ErrOpen indicates the engine could not open or create the data file,
	// apply tuning directives, or create the schema.
	ErrOpen = errors.New("opening storage failed")

	// ErrConstraint indicates an insert collided with an existing identifier.
	ErrConstraint = errors.New("constraint violation")

	// ErrBusy indicates a lock could not be acquired within the busy timeout.
	ErrBusy = errors.New("storage busy")

	// ErrSerialization indicates a stored JSON blob could not be decoded.
	// This points at data corruption or external tampering.
	ErrSerialization = errors.New("serialization failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
