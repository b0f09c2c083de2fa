/*
Package tasks implements the household task tree.

PURPOSE:
  A Tree is the single owner of all Todo nodes. Nodes form a forest via
  optional parent IDs and are partitioned into exactly two sets: active
  and archived. The tree is never observably cyclic - every mutation
  that would close a cycle is rejected before it takes effect.

KEY INVARIANTS:
  1. A node is never its own parent, directly or transitively.
  2. Every node is in exactly one of the active/archived partitions.
  3. Nesting level is computed from the current parent chain on demand,
     so it always reflects the tree shape after arbitrary re-parenting.
  4. Failed mutations leave the tree exactly as it was.

CYCLE CHECK:
  Re-parenting walks the candidate parent's ancestor chain. The walk is
  bounded: the chain was acyclic before the mutation, so it terminates
  at a root.

SEE ALSO:
  - todo.go: The node type
  - snapshot.go: Persistence surface (parent as reference ID)
*/
package tasks

import (
	"strings"
	"time"

	"github.com/warp/homeledger/identity"
)

// TodoParams describes a todo to create. Title is required (trimmed,
// non-empty); everything else is optional.
type TodoParams struct {
	Maintainers []*identity.User
	Title       string
	Parent      *Todo
	Description string
	DueAt       *time.Time
	Progress    int
	CreatedAt   time.Time // zero value means "now"
}

// Tree owns all todo nodes, addressed by ID in a flat table.
type Tree struct {
	nodes    map[int64]*Todo
	archived map[int64]bool
	order    []int64 // creation order, for stable listings
	next     int64
}

// NewTree creates an empty task tree.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[int64]*Todo),
		archived: make(map[int64]bool),
	}
}

// Create builds a new todo and inserts it into the active partition.
// The title is trimmed; a blank title fails with ErrEmptyTitle. If a
// parent is given, the usual cycle check runs before linking and a
// failure aborts the creation as a whole (nothing is inserted).
func (t *Tree) Create(p TodoParams) (*Todo, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	node := &Todo{
		ID:          t.next,
		Maintainers: append([]*identity.User(nil), p.Maintainers...),
		Title:       title,
		CreatedAt:   createdAt,
		Description: p.Description,
		DueAt:       p.DueAt,
	}
	node.SetProgress(p.Progress)

	if p.Parent != nil {
		if err := t.link(node, p.Parent); err != nil {
			return nil, err
		}
	}

	t.nodes[node.ID] = node
	t.order = append(t.order, node.ID)
	t.next++
	return node, nil
}

// SetParent re-parents node. A nil parent clears the link and always
// succeeds. Setting a node as its own parent fails with ErrSelfParent;
// setting one of its descendants as parent fails with CycleError. On
// failure the previous parent link is kept.
func (t *Tree) SetParent(node, parent *Todo) error {
	if parent == nil {
		node.parent = nil
		return nil
	}
	return t.link(node, parent)
}

// link attaches node below parent after the cycle check.
func (t *Tree) link(node, parent *Todo) error {
	if parent.ID == node.ID {
		return ErrSelfParent
	}

	// Walk parent's ancestor chain; if node appears, parent is a
	// descendant of node and linking would close a cycle.
	ancestor := parent
	for {
		pid, ok := ancestor.Parent()
		if !ok {
			break
		}
		if pid == node.ID {
			return &CycleError{NodeID: node.ID, ParentID: parent.ID}
		}
		next, ok := t.nodes[pid]
		if !ok {
			break
		}
		ancestor = next
	}

	pid := parent.ID
	node.parent = &pid
	return nil
}

// Level returns the nesting depth of node: 0 for roots, parent's level
// plus one otherwise. Computed from the current chain, never cached.
func (t *Tree) Level(node *Todo) int {
	pid, ok := node.Parent()
	if !ok {
		return 0
	}
	parent, ok := t.nodes[pid]
	if !ok {
		return 0
	}
	return t.Level(parent) + 1
}

// ToggleArchive moves node between the active and archived partitions
// and returns the new archived state. Children do not move with it.
func (t *Tree) ToggleArchive(node *Todo) bool {
	if t.archived[node.ID] {
		delete(t.archived, node.ID)
		return false
	}
	t.archived[node.ID] = true
	return true
}

// IsArchived reports which partition the node is in.
func (t *Tree) IsArchived(node *Todo) bool {
	return t.archived[node.ID]
}

// Copy creates an independent duplicate of node with a fresh ID and
// creation time. Mutating the copy never affects the original.
func (t *Tree) Copy(node *Todo) (*Todo, error) {
	var parent *Todo
	if pid, ok := node.Parent(); ok {
		parent = t.nodes[pid]
	}
	var dueAt *time.Time
	if node.DueAt != nil {
		d := *node.DueAt
		dueAt = &d
	}
	return t.Create(TodoParams{
		Maintainers: node.Maintainers,
		Title:       node.Title,
		Parent:      parent,
		Description: node.Description,
		DueAt:       dueAt,
		Progress:    node.Progress(),
	})
}

// Lookup finds a node by ID in either partition.
func (t *Tree) Lookup(id int64) (*Todo, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return node, nil
}

// Active lists the active todos in creation order.
func (t *Tree) Active() []*Todo {
	return t.list(false)
}

// Archived lists the archived todos in creation order.
func (t *Tree) Archived() []*Todo {
	return t.list(true)
}

func (t *Tree) list(archived bool) []*Todo {
	var out []*Todo
	for _, id := range t.order {
		if t.archived[id] == archived {
			out = append(out, t.nodes[id])
		}
	}
	return out
}
