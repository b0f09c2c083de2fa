/*
Package identity owns user identities for the household.

PURPOSE:
  A Registry is the single owner of all User records. Every other
  component (task tree, money ledger) refers to users by their
  normalized ID and resolves them through the registry, never by
  holding an owning copy.

KEY INVARIANTS:
  1. IDs are non-empty, lowercase, alphanumeric ([a-z0-9]).
  2. IDs are unique, case-insensitively: "ABC" and "abc" collide.
  3. The registry is constructor-injected, never a package singleton,
     so tests and callers get isolated user sets.

USAGE:
  reg := identity.NewRegistry()
  alice, err := reg.Create("Alice", "")   // registered as id "alice"
  u, err := reg.Lookup("ALICE")           // case-insensitive

SEE ALSO:
  - errors.go: Error taxonomy for this package
*/
package identity

import (
	"sort"
	"strings"
)

// User is a registered household member. The ID is normalized to
// lowercase on creation and never changes; the display name is mutable.
type User struct {
	ID   string
	Name string
}

// Registry owns the live set of users, keyed by normalized ID.
type Registry struct {
	users map[string]*User
}

// NewRegistry creates an empty user registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

// Create registers a new user under the lowercase form of id.
// An empty name defaults to the normalized ID.
// Returns InvalidIDError for empty or non-alphanumeric IDs and
// DuplicateIDError when the normalized ID is already taken.
func (r *Registry) Create(id, name string) (*User, error) {
	normalized := strings.ToLower(id)
	if !validID(normalized) {
		return nil, &InvalidIDError{ID: id}
	}
	if _, ok := r.users[normalized]; ok {
		return nil, &DuplicateIDError{ID: id}
	}
	if name == "" {
		name = normalized
	}
	u := &User{ID: normalized, Name: name}
	r.users[normalized] = u
	return u, nil
}

// Lookup finds a user by ID, case-insensitively.
func (r *Registry) Lookup(id string) (*User, error) {
	u, ok := r.users[strings.ToLower(id)]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return u, nil
}

// Delete removes a user by ID. Fails with NotFoundError if absent.
func (r *Registry) Delete(id string) error {
	normalized := strings.ToLower(id)
	if _, ok := r.users[normalized]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(r.users, normalized)
	return nil
}

// Exists reports whether a user with the given ID is registered.
// It never fails.
func (r *Registry) Exists(id string) bool {
	_, ok := r.users[strings.ToLower(id)]
	return ok
}

// All returns every registered user, ordered by ID for stable output.
func (r *Registry) All() []*User {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validID(id string) bool {
	if len(id) == 0 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}
