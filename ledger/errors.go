/*
errors.go - Error types for the money ledger

ERROR CATEGORIES:
  1. Expense creation  - negative payer contributions
  2. Settlement        - already settled expenses, participant mismatch
  3. Rounding          - shares that do not sum to zero (caller misuse),
                         or a failed postcondition (internal fault)
  4. Registry lookups  - unknown item IDs

Every failure is surfaced synchronously and leaves the registry exactly
as it was before the call.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeContribution is returned when any single payer amount
	// on an expense is negative, regardless of the total.
	ErrNegativeContribution = errors.New("expense contains negative contributions")

	// ErrAlreadySettled is returned when a balance is attempted over an
	// expense that is already settled by an earlier balance.
	ErrAlreadySettled = errors.New("expense already settled")

	// ErrParticipantMismatch is returned when explicit balance payers do
	// not exactly match the bill's participant set.
	ErrParticipantMismatch = errors.New("balance payers do not match bill participants")

	// ErrUnbalanceable is returned when the rounder is handed shares
	// that do not sum to (approximately) zero, or when its zero-sum
	// postcondition fails. The latter is an internal consistency fault,
	// not a caller error.
	ErrUnbalanceable = errors.New("shares cannot be balanced")

	// ErrInvalidMinimum is returned when the settlement denomination is
	// not a positive integer.
	ErrInvalidMinimum = errors.New("minimum denomination must be positive")

	// ErrNotFound is returned for unknown money item IDs.
	ErrNotFound = errors.New("no such money item")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NegativeContributionError lists the payer entries below zero.
type NegativeContributionError struct {
	Contributions map[string]int64 // user id -> negative amount
}

func (e *NegativeContributionError) Error() string {
	return fmt.Sprintf("expense contains negative contributions: %v", e.Contributions)
}

func (e *NegativeContributionError) Unwrap() error { return ErrNegativeContribution }

// AlreadySettledError lists the expenses that already carry a balance.
type AlreadySettledError struct {
	ExpenseIDs []int64
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("expenses already settled: %v", e.ExpenseIDs)
}

func (e *AlreadySettledError) Unwrap() error { return ErrAlreadySettled }

// ParticipantMismatchError describes how the explicit payer set differs
// from the bill's participants.
type ParticipantMismatchError struct {
	Missing []string // bill participants absent from the payers
	Extra   []string // payers that are not bill participants
}

func (e *ParticipantMismatchError) Error() string {
	return fmt.Sprintf("balance payers do not match bill participants (missing %v, extra %v)",
		e.Missing, e.Extra)
}

func (e *ParticipantMismatchError) Unwrap() error { return ErrParticipantMismatch }

// UnbalanceableError reports the offending share sum.
type UnbalanceableError struct {
	Sum decimal.Decimal
}

func (e *UnbalanceableError) Error() string {
	return fmt.Sprintf("shares sum to %s, not zero", e.Sum)
}

func (e *UnbalanceableError) Unwrap() error { return ErrUnbalanceable }

// NotFoundError reports a lookup of an unknown item ID.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such money item %d", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
