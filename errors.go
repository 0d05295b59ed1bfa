package rexbind

import "errors"

// Sentinel errors returned by Context operations.
//
// ErrNotFound and ErrTimeout are expected, recoverable outcomes: a search
// that ran cleanly but produced nothing, or a search that exceeded its
// pattern's time budget. ErrHandleNotFound and ErrTypeMismatch indicate a
// host-side contract violation (a handle that was never issued, was already
// destroyed, or holds a different kind of value than the operation expects).
//
// Callers discriminate with errors.Is; wrapped errors carry the offending
// handle or value for diagnostics.
var (
	// ErrHandleNotFound reports a negative, out-of-range, or destroyed handle.
	ErrHandleNotFound = errors.New("handle not found")

	// ErrTypeMismatch reports a live handle of the wrong kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTimeout reports a search aborted by its pattern's time budget.
	ErrTimeout = errors.New("search timed out")

	// ErrNotFound reports a clean operation that produced no result:
	// no match, or an index past the end of a live collection.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports a rejected parameter, such as a pattern
	// cache capacity below 1.
	ErrInvalidArgument = errors.New("invalid argument")
)
