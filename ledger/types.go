/*
Package ledger implements the group-expense settlement ledger.

PURPOSE:
  Tracks pooled household expenses, derives each member's fair share,
  and turns the fractional balances into a zero-sum payout plan in
  whole denominations.

KEY CONCEPTS:
  - Item:    Common shape of everything in the ledger. The two variants,
             Expense and Balance, share one record shape (Meta) and one
             monotonic ID sequence instead of emulating a class
             hierarchy.
  - Expense: A single payment event - who paid what, who shares the
             cost.
  - Bill:    A derived, non-persistent aggregation over a chosen set of
             expenses. Not an Item; never registered.
  - Balance: The settlement record produced from a bill. Registering a
             balance marks its expenses settled, atomically.

AMOUNTS:
  Paid amounts are int64 minor units (cents). Derived fractional values
  (per-head shares, user balances) use decimal.Decimal so the rounding
  step works on exact quantities, not binary floats.

DESIGN PRINCIPLES:
  1. The Registry is the sole owner of the live item set; everything
     else holds IDs (weak references).
  2. Item IDs are unique across all items ever created, both variants,
     even after deletions.
  3. A failed operation leaves the registry untouched.

SEE ALSO:
  - expense.go, bill.go, balance.go: The entity types
  - rounder.go: The settlement rounding algorithm
  - registry.go: Ownership and lifecycle
*/
package ledger

import "time"

// Kind tags the two money item variants.
type Kind string

const (
	KindExpense Kind = "expense"
	KindBalance Kind = "balance"
)

// Meta is the record shape shared by both item variants.
//
// Payers maps user IDs to minor-unit amounts. On an Expense these are
// non-negative paid contributions; on a Balance they are the signed
// settlement plan (positive pays into the pot, negative receives).
type Meta struct {
	ID          int64
	CreatedAt   time.Time
	Title       string
	Payers      map[string]int64
	Description string
}

// ItemMeta returns the shared record. Both variants expose it through
// embedding.
func (m *Meta) ItemMeta() *Meta { return m }

// Item is the registry's common view over Expense and Balance.
type Item interface {
	ItemMeta() *Meta
	ItemKind() Kind
}

// Compile-time variant checks.
var (
	_ Item = (*Expense)(nil)
	_ Item = (*Balance)(nil)
)
