package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist, or was
	// not in the state the write expected.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable indicates the backing store could not be reached
	// or failed the call for reasons unrelated to record state.
	ErrStoreUnavailable = errors.New("store unavailable")
)
