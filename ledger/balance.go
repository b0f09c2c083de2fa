package ledger

// Balance is the immutable settlement record produced from a bill. Its
// Payers carry the signed payout plan: positive amounts go into the
// pot, negative amounts come back out, and the plan sums to exactly
// zero in whole denominations.
//
// The settled expenses are referenced by ID. A later deletion of one of
// them leaves the balance with a dangling ID, which is tolerated;
// un-settling a balance is not implemented.
type Balance struct {
	Meta
	ExpenseIDs []int64
}

// ItemKind tags the variant.
func (b *Balance) ItemKind() Kind { return KindBalance }

// Bill reconstructs the settled bill from the live registry. Expenses
// deleted since the settlement are silently absent.
func (b *Balance) Bill(reg *Registry) *Bill {
	var expenses []*Expense
	for _, id := range b.ExpenseIDs {
		if e, err := reg.Expense(id); err == nil {
			expenses = append(expenses, e)
		}
	}
	return NewBill(expenses...)
}
