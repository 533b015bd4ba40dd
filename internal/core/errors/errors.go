// Package errors provides centralized error definitions for the engine.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Input validation errors. These are rejected before any query is issued.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingTitle indicates a proposed event without a title.
	ErrMissingTitle = errors.New("missing title")

	// ErrInvalidStartTime indicates a start timestamp that could not be parsed.
	ErrInvalidStartTime = errors.New("invalid start time")

	// ErrIncompleteCoordinates indicates a latitude without a longitude or
	// vice versa.
	ErrIncompleteCoordinates = errors.New("incomplete coordinates")
)

// Query errors. A failed candidate query is always fatal to the invoking
// call; it is never downgraded to "no duplicates".
var (
	// ErrQueryFailed indicates a candidate query could not execute.
	ErrQueryFailed = errors.New("candidate query failed")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
