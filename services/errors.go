package services

import (
	"errors"
	"townsquare-api/repositories"
)

var (
	// ErrInvalidTarget rejects self-referencing relationship operations.
	ErrInvalidTarget = errors.New("cannot target yourself")
	// ErrAlreadyBlocked rejects contact while a block exists in either direction.
	ErrAlreadyBlocked = errors.New("a block exists between these users")
	// ErrDuplicateRequest rejects a second pending request for the same pair.
	ErrDuplicateRequest = errors.New("a pending friend request already exists")
	// ErrAlreadyFriends rejects a request between users who are already friends.
	ErrAlreadyFriends = errors.New("already friends with this user")

	// ErrNotFound is the race-induced missing/terminal-record outcome.
	// Callers treat it as already satisfied after a re-fetch, not as fatal.
	ErrNotFound = repositories.ErrNotFound
	// ErrStoreUnavailable is surfaced for user-visible retry messaging and
	// never silently swallowed.
	ErrStoreUnavailable = repositories.ErrStoreUnavailable
)
