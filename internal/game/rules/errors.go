// Package rules holds the error kinds and small value types shared by the
// table-kit rules engines (dice, initiative, character sheet).
package rules

import "errors"

// Error kinds. Every failure returned by a rules engine wraps exactly one of
// these; callers classify with errors.Is.
//
// Invariant: an operation that returns one of these kinds has not mutated
// any state.
var (
	// ErrInvalidArgument reports malformed or out-of-contract input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIndexOutOfRange reports an operation addressed to a position or
	// identifier that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmptyState reports an operation that needs at least one entry.
	ErrEmptyState = errors.New("empty state")
)
