package ledger

import "github.com/shopspring/decimal"

// Expense is a payment event: who paid what (Payers, in minor units)
// and who consumes the result and therefore owes a share (Sharers).
// The two groups may overlap or differ entirely.
//
// TaskID optionally points at the task the expense belongs to, and
// BalanceID at the balance that settled it. Both are weak references:
// deleting the referenced task or balance never deletes the expense,
// and resolving them goes through the owning registry.
type Expense struct {
	Meta
	Sharers   []string
	BalanceID *int64
	TaskID    *int64
}

// ItemKind tags the variant.
func (e *Expense) ItemKind() Kind { return KindExpense }

// Price is the total cost of the expense: the sum of all payer
// contributions.
func (e *Expense) Price() int64 {
	var total int64
	for _, amount := range e.Payers {
		total += amount
	}
	return total
}

// SharedPrice is the equal per-head split of the price over the
// sharers, before any personalization. Fractional by nature.
func (e *Expense) SharedPrice() decimal.Decimal {
	if len(e.Sharers) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(e.Price()).Div(decimal.NewFromInt(int64(len(e.Sharers))))
}

// Settled reports whether a balance has already settled this expense.
func (e *Expense) Settled() bool { return e.BalanceID != nil }

// sharedBy reports whether the user owes a share of this expense.
func (e *Expense) sharedBy(userID string) bool {
	for _, id := range e.Sharers {
		if id == userID {
			return true
		}
	}
	return false
}
