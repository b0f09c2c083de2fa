/*
registry.go - Ownership and lifecycle of money items

PURPOSE:
  The Registry is the single owner of the live item set and of the
  creation-ordered ID counter shared by both variants. The counter only
  ever moves forward: IDs stay unique across everything ever created,
  even after deletions.

  The registry is constructor-injected with the identity registry so
  payer and sharer IDs can be validated and normalized at the boundary;
  items then carry plain user IDs as weak references.
*/
package ledger

import (
	"sort"
	"time"

	"github.com/warp/homeledger/identity"
)

// Registry owns the live money items.
type Registry struct {
	users *identity.Registry
	items map[int64]Item
	order []int64 // creation order of live items
	next  int64   // monotonic, never reused
}

// NewRegistry creates an empty ledger bound to a user registry.
func NewRegistry(users *identity.Registry) *Registry {
	return &Registry{
		users: users,
		items: make(map[int64]Item),
	}
}

// ExpenseParams describes an expense to create.
type ExpenseParams struct {
	Title       string
	Payers      map[string]int64 // user id -> paid minor units, each >= 0
	Sharers     []string         // default: the payer set, sorted by id
	Description string
	TaskID      *int64
	CreatedAt   time.Time // zero value means "now"
}

// AddExpense validates, creates and registers a new expense under the
// next global ID.
//
// Every payer amount must be >= 0; any negative entry fails the whole
// creation with NegativeContributionError even if the total is
// positive. All payer and sharer IDs must resolve against the user
// registry (case-insensitively; they are stored normalized).
func (r *Registry) AddExpense(p ExpenseParams) (*Expense, error) {
	payers := make(map[string]int64, len(p.Payers))
	negative := make(map[string]int64)
	for id, amount := range p.Payers {
		u, err := r.users.Lookup(id)
		if err != nil {
			return nil, err
		}
		if amount < 0 {
			negative[u.ID] = amount
		}
		payers[u.ID] = amount
	}
	if len(negative) > 0 {
		return nil, &NegativeContributionError{Contributions: negative}
	}

	sharers := make([]string, 0, len(p.Sharers))
	if p.Sharers == nil {
		for id := range payers {
			sharers = append(sharers, id)
		}
		sort.Strings(sharers)
	} else {
		for _, id := range p.Sharers {
			u, err := r.users.Lookup(id)
			if err != nil {
				return nil, err
			}
			sharers = append(sharers, u.ID)
		}
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	e := &Expense{
		Meta: Meta{
			ID:          r.next,
			CreatedAt:   createdAt,
			Title:       p.Title,
			Payers:      payers,
			Description: p.Description,
		},
		Sharers: sharers,
		TaskID:  p.TaskID,
	}
	r.add(e)
	return e, nil
}

// Lookup finds a live item by ID.
func (r *Registry) Lookup(id int64) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return item, nil
}

// Expense finds a live expense by ID. Balances are not found here.
func (r *Registry) Expense(id int64) (*Expense, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	e, ok := item.(*Expense)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return e, nil
}

// Delete removes an item from the live set. The ID is never reused.
// Settled-expense bookkeeping on the owning balance is intentionally
// left alone: balances tolerate dangling expense IDs.
func (r *Registry) Delete(id int64) error {
	if _, ok := r.items[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Items lists the live items in creation order.
func (r *Registry) Items() []Item {
	out := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// NextID exposes the counter for the persistence layer. IDs below it
// must never be handed out again, even when the items are gone.
func (r *Registry) NextID() int64 { return r.next }

func (r *Registry) add(item Item) {
	meta := item.ItemMeta()
	r.items[meta.ID] = item
	r.order = append(r.order, meta.ID)
	r.next++
}
