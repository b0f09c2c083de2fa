/*
errors.go - Error types for the identity registry

PURPOSE:
  All identity errors in one place. Callers distinguish failures with
  errors.Is against the sentinels; the structured types carry the
  offending ID for messages and API responses.

USAGE:
  _, err := reg.Create("1+1", "")
  if errors.Is(err, identity.ErrInvalidID) { ... }

SEE ALSO:
  - users.go: Registry operations returning these errors
*/
package identity

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidID is returned when a user ID is empty or contains
	// characters outside [a-z0-9] after lowercasing.
	ErrInvalidID = errors.New("invalid user id")

	// ErrDuplicateID is returned when the (case-insensitive) ID is
	// already registered.
	ErrDuplicateID = errors.New("user id already used")

	// ErrNotFound is returned by lookups and deletes of unknown IDs.
	ErrNotFound = errors.New("no such user")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending ID
// =============================================================================

// InvalidIDError reports a malformed user ID, as requested by the caller
// (before normalization).
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid user id %q: must be non-empty and alphanumeric", e.ID)
}

func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// DuplicateIDError reports an ID that is already taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("user id %q already used", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// NotFoundError reports a lookup or delete of an unknown ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such user %q", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound returns true if the error indicates a missing user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
