package sentinal_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrAlreadyExists      = errors.New("already exists")
)

// Domain errors. Each wraps one of the common errors so callers can map them
// to a status with errors.Is and still report the specific reason.
var (
	ErrSelfFriendRequest  = fmt.Errorf("cannot befriend yourself: %w", ErrInvalidInput)
	ErrAlreadyFriends     = fmt.Errorf("already friends: %w", ErrConflict)
	ErrNoPendingRequest   = fmt.Errorf("no pending friend request: %w", ErrNotFound)
	ErrNotParticipant     = fmt.Errorf("not a participant: %w", ErrForbidden)
	ErrAlreadyMember      = fmt.Errorf("already a member: %w", ErrConflict)
	ErrNotMember          = fmt.Errorf("not a member: %w", ErrConflict)
	ErrSelfRemoval        = fmt.Errorf("cannot remove yourself: %w", ErrForbidden)
	ErrAmbiguousTarget    = fmt.Errorf("exactly one of chat or group is required: %w", ErrInvalidInput)
	ErrTooFewParticipants = fmt.Errorf("at least two distinct participants are required: %w", ErrInvalidInput)
	ErrRequesterNotInChat = fmt.Errorf("requester must be a participant: %w", ErrInvalidInput)
	ErrUnknownParticipant = fmt.Errorf("unknown participant: %w", ErrInvalidInput)
	ErrEmptyContent       = fmt.Errorf("content is required: %w", ErrInvalidInput)
	ErrUsernameTaken      = fmt.Errorf("username taken: %w", ErrAlreadyExists)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)
