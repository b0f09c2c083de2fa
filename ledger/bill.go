/*
bill.go - Derived aggregation over a chosen set of expenses

PURPOSE:
  A Bill answers "who paid what and who owes what" for a fixed expense
  set. It is a read-only view: never registered, never persisted, and
  recomputed on demand so it always reflects the current expenses.

AGGREGATION:
  For each expense, every payer is recorded with (amount, sharer?) and
  every non-paying sharer with (0, true). A user's owed total is the
  grand total of equal per-head shares minus the shares of the expenses
  they are excluded from. Balance = owed - paid: positive pays into the
  pot, negative is paid out of it.

ZERO-SUM:
  Summing the balances over all users yields ~0 (up to decimal division
  precision). The settlement rounder depends on this precondition.
*/
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bill is a derived view over a deduplicated set of expenses.
type Bill struct {
	expenses []*Expense // unique by ID, in the order first given
}

// Entry is one user's involvement in one expense: what they paid and
// whether they owe a share.
type Entry struct {
	Paid   int64
	Sharer bool
}

// NewBill builds a bill over the given expenses, dropping duplicates.
func NewBill(expenses ...*Expense) *Bill {
	seen := make(map[int64]bool, len(expenses))
	b := &Bill{}
	for _, e := range expenses {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		b.expenses = append(b.expenses, e)
	}
	return b
}

// Expenses returns the bill's expense set.
func (b *Bill) Expenses() []*Expense {
	return append([]*Expense(nil), b.expenses...)
}

// grid computes the per-user, per-expense involvement table.
func (b *Bill) grid() map[string]map[int64]Entry {
	users := make(map[string]map[int64]Entry)
	row := func(userID string) map[int64]Entry {
		if users[userID] == nil {
			users[userID] = make(map[int64]Entry)
		}
		return users[userID]
	}

	for _, e := range b.expenses {
		for userID, paid := range e.Payers {
			row(userID)[e.ID] = Entry{Paid: paid, Sharer: e.sharedBy(userID)}
		}
		for _, userID := range e.Sharers {
			if _, paid := e.Payers[userID]; paid {
				continue
			}
			row(userID)[e.ID] = Entry{Paid: 0, Sharer: true}
		}
	}
	return users
}

// Entry returns a user's involvement in one expense. Unknown pairs
// yield the zero Entry: paid nothing, owes nothing.
func (b *Bill) Entry(userID string, expenseID int64) Entry {
	return b.grid()[userID][expenseID]
}

// Participants lists every involved user (payer or sharer of any
// expense), sorted by ID.
func (b *Bill) Participants() []string {
	grid := b.grid()
	out := make([]string, 0, len(grid))
	for userID := range grid {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// UserPaid sums, per user, the amounts paid across the expense set.
func (b *Bill) UserPaid() map[string]int64 {
	out := make(map[string]int64)
	for userID, entries := range b.grid() {
		var total int64
		for _, entry := range entries {
			total += entry.Paid
		}
		out[userID] = total
	}
	return out
}

// SharedPrice is the grand total of the equal per-head shares of all
// expenses, before any per-user exclusions.
func (b *Bill) SharedPrice() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.expenses {
		total = total.Add(e.SharedPrice())
	}
	return total
}

// UserPrices derives each participant's personal obligation: the grand
// shared total minus the shares of every expense they are excluded
// from.
func (b *Bill) UserPrices() map[string]decimal.Decimal {
	shared := b.SharedPrice()
	grid := b.grid()
	out := make(map[string]decimal.Decimal, len(grid))
	for userID := range grid {
		price := shared
		for _, e := range b.expenses {
			if !grid[userID][e.ID].Sharer {
				price = price.Sub(e.SharedPrice())
			}
		}
		out[userID] = price
	}
	return out
}

// UserBalances derives, per participant, owed minus paid. Positive
// means the user pays into the pot, negative means they are owed money
// from it. The balances sum to ~0 across all participants.
func (b *Bill) UserBalances() map[string]decimal.Decimal {
	paid := b.UserPaid()
	out := b.UserPrices()
	for userID, price := range out {
		out[userID] = price.Sub(decimal.NewFromInt(paid[userID]))
	}
	return out
}

// Equal reports whether two bills cover the same expense set,
// regardless of order.
func (b *Bill) Equal(other *Bill) bool {
	if other == nil || len(b.expenses) != len(other.expenses) {
		return false
	}
	ids := make(map[int64]bool, len(b.expenses))
	for _, e := range b.expenses {
		ids[e.ID] = true
	}
	for _, e := range other.expenses {
		if !ids[e.ID] {
			return false
		}
	}
	return true
}

// ToBalance settles the bill: it derives the payout plan by rounding
// the user balances to the given denomination and registers a Balance
// that marks every expense settled. See Registry-side preconditions on
// ToBalanceWith.
func (b *Bill) ToBalance(reg *Registry, minimum int64) (*Balance, error) {
	payers, err := RoundShares(minimum, b.UserBalances())
	if err != nil {
		return nil, err
	}
	return b.ToBalanceWith(reg, payers)
}

// ToBalanceWith settles the bill with an explicit payout plan.
//
// Preconditions, checked atomically before any mutation:
//   - the payer set exactly matches the bill's participant set,
//     else ParticipantMismatchError;
//   - none of the expenses is already settled, else AlreadySettledError.
//
// On success every expense's balance reference is set and the balance
// registered, together or not at all.
func (b *Bill) ToBalanceWith(reg *Registry, payers map[string]int64) (*Balance, error) {
	participants := b.Participants()

	var missing []string
	for _, userID := range participants {
		if _, ok := payers[userID]; !ok {
			missing = append(missing, userID)
		}
	}
	var extra []string
	if len(payers) != len(participants) || len(missing) > 0 {
		known := make(map[string]bool, len(participants))
		for _, userID := range participants {
			known[userID] = true
		}
		for userID := range payers {
			if !known[userID] {
				extra = append(extra, userID)
			}
		}
		sort.Strings(extra)
		return nil, &ParticipantMismatchError{Missing: missing, Extra: extra}
	}

	var settled []int64
	for _, e := range b.expenses {
		if e.Settled() {
			settled = append(settled, e.ID)
		}
	}
	if len(settled) > 0 {
		return nil, &AlreadySettledError{ExpenseIDs: settled}
	}

	plan := make(map[string]int64, len(payers))
	for userID, amount := range payers {
		plan[userID] = amount
	}
	expenseIDs := make([]int64, 0, len(b.expenses))
	for _, e := range b.expenses {
		expenseIDs = append(expenseIDs, e.ID)
	}

	bal := &Balance{
		Meta: Meta{
			ID:        reg.next,
			CreatedAt: time.Now(),
			Title:     "Balance",
			Payers:    plan,
		},
		ExpenseIDs: expenseIDs,
	}
	for _, e := range b.expenses {
		id := bal.ID
		e.BalanceID = &id
	}
	reg.add(bal)
	return bal, nil
}
