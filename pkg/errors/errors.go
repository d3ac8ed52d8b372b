package errors

import "errors"

// Failure classes shared by every module. Module-level sentinels wrap one of these
// with %w so handlers can pick the HTTP status with errors.Is.
var (
	// ErrInvalidInput rejects a request before anything is written. Maps to 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedTimestamp marks a check-in value that does not match the export format.
	// Always recovered per row, never surfaced as a request failure.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrPersistence means a required write did not produce a row. Maps to 500.
	ErrPersistence = errors.New("persistence failure")
)
