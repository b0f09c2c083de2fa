/*
Package store carries the persistence boundary of the domain model.

PURPOSE:
  The domain registries are pure in-memory state. This package captures
  them into a flat, field-preserving State (all references as IDs) and
  rebuilds them from one. The JSON codec round-trips a whole State;
  store/sqlite persists the same records in a database.

OWNERSHIP:
  The registries stay the owners of their entities. A State is a value
  snapshot - capturing or restoring never aliases live domain objects.

SEE ALSO:
  - tasks/snapshot.go, ledger/snapshot.go: Per-registry record shapes
  - store/sqlite: Database-backed persistence of the same State
*/
package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/warp/homeledger/identity"
	"github.com/warp/homeledger/ledger"
	"github.com/warp/homeledger/tasks"
)

// UserRecord is the stored shape of a user.
type UserRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// State is a complete, reference-by-ID snapshot of all three
// registries.
type State struct {
	Users      []UserRecord             `json:"users"`
	Todos      []tasks.TodoSnapshot     `json:"todos"`
	Expenses   []ledger.ExpenseSnapshot `json:"expenses"`
	Balances   []ledger.BalanceSnapshot `json:"balances"`
	NextItemID int64                    `json:"next_item_id"`
}

// Capture snapshots the three registries into a State.
func Capture(users *identity.Registry, tree *tasks.Tree, reg *ledger.Registry) *State {
	s := &State{NextItemID: reg.NextID()}
	for _, u := range users.All() {
		s.Users = append(s.Users, UserRecord{ID: u.ID, Name: u.Name})
	}
	s.Todos = tree.Snapshot()
	s.Expenses, s.Balances = reg.Snapshot()
	return s
}

// Restore rebuilds the three registries from the state.
func (s *State) Restore() (*identity.Registry, *tasks.Tree, *ledger.Registry, error) {
	users := identity.NewRegistry()
	for _, r := range s.Users {
		if _, err := users.Create(r.ID, r.Name); err != nil {
			return nil, nil, nil, fmt.Errorf("restore user %q: %w", r.ID, err)
		}
	}

	tree, err := tasks.RestoreTree(users, s.Todos)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("restore task tree: %w", err)
	}

	reg := ledger.RestoreRegistry(users, s.Expenses, s.Balances, s.NextItemID)
	return users, tree, reg, nil
}

// EncodeJSON writes the state as indented JSON.
func (s *State) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// DecodeJSON reads a state previously written with EncodeJSON.
func DecodeJSON(r io.Reader) (*State, error) {
	var s State
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}
