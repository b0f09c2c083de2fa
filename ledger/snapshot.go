package ledger

import (
	"sort"
	"time"

	"github.com/warp/homeledger/identity"
)

// ExpenseSnapshot is the field-preserving record shape of an expense
// for the persistence layer. The balance and task links are stored as
// reference IDs, never embedded copies.
type ExpenseSnapshot struct {
	ID          int64            `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Title       string           `json:"title"`
	Payers      map[string]int64 `json:"payers"`
	Sharers     []string         `json:"sharers"`
	BalanceID   *int64           `json:"balance_id,omitempty"`
	TaskID      *int64           `json:"task_id,omitempty"`
	Description string           `json:"description,omitempty"`
}

// BalanceSnapshot is the record shape of a balance. Payers are the
// signed settlement plan.
type BalanceSnapshot struct {
	ID          int64            `json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Title       string           `json:"title"`
	Payers      map[string]int64 `json:"payers"`
	ExpenseIDs  []int64          `json:"expense_ids"`
	Description string           `json:"description,omitempty"`
}

// Snapshot exports the live items in creation order, split by variant.
func (r *Registry) Snapshot() ([]ExpenseSnapshot, []BalanceSnapshot) {
	var expenses []ExpenseSnapshot
	var balances []BalanceSnapshot
	for _, id := range r.order {
		switch item := r.items[id].(type) {
		case *Expense:
			expenses = append(expenses, ExpenseSnapshot{
				ID:          item.ID,
				CreatedAt:   item.CreatedAt,
				Title:       item.Title,
				Payers:      clonePayers(item.Payers),
				Sharers:     append([]string(nil), item.Sharers...),
				BalanceID:   cloneID(item.BalanceID),
				TaskID:      cloneID(item.TaskID),
				Description: item.Description,
			})
		case *Balance:
			balances = append(balances, BalanceSnapshot{
				ID:          item.ID,
				CreatedAt:   item.CreatedAt,
				Title:       item.Title,
				Payers:      clonePayers(item.Payers),
				ExpenseIDs:  append([]int64(nil), item.ExpenseIDs...),
				Description: item.Description,
			})
		}
	}
	return expenses, balances
}

// RestoreRegistry rebuilds a ledger from snapshots. nextID restores the
// monotonic counter; it is raised to clear every restored ID, so a
// snapshot from before a deletion can never cause an ID to be reused.
func RestoreRegistry(users *identity.Registry, expenses []ExpenseSnapshot, balances []BalanceSnapshot, nextID int64) *Registry {
	r := NewRegistry(users)
	r.next = nextID

	for _, s := range expenses {
		r.place(&Expense{
			Meta: Meta{
				ID:          s.ID,
				CreatedAt:   s.CreatedAt,
				Title:       s.Title,
				Payers:      clonePayers(s.Payers),
				Description: s.Description,
			},
			Sharers:   append([]string(nil), s.Sharers...),
			BalanceID: cloneID(s.BalanceID),
			TaskID:    cloneID(s.TaskID),
		})
	}
	for _, s := range balances {
		r.place(&Balance{
			Meta: Meta{
				ID:          s.ID,
				CreatedAt:   s.CreatedAt,
				Title:       s.Title,
				Payers:      clonePayers(s.Payers),
				Description: s.Description,
			},
			ExpenseIDs: append([]int64(nil), s.ExpenseIDs...),
		})
	}

	// Restore creation order across both variants.
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r
}

// place inserts a restored item without advancing past its own ID more
// than necessary.
func (r *Registry) place(item Item) {
	meta := item.ItemMeta()
	r.items[meta.ID] = item
	r.order = append(r.order, meta.ID)
	if meta.ID >= r.next {
		r.next = meta.ID + 1
	}
}

func clonePayers(payers map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(payers))
	for id, amount := range payers {
		out[id] = amount
	}
	return out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
