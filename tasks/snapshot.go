package tasks

import (
	"time"

	"github.com/warp/homeledger/identity"
)

// TodoSnapshot is the field-preserving record shape of a todo node for
// the persistence layer. References (parent, maintainers) are stored as
// IDs, not embedded copies, so a restored tree resolves them through
// the owning registries again.
type TodoSnapshot struct {
	ID          int64      `json:"id"`
	Maintainers []string   `json:"maintainers"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Progress    int        `json:"progress"`
	Archived    bool       `json:"archived"`
}

// Snapshot exports every node (active and archived) in creation order.
func (t *Tree) Snapshot() []TodoSnapshot {
	out := make([]TodoSnapshot, 0, len(t.order))
	for _, id := range t.order {
		node := t.nodes[id]
		snap := TodoSnapshot{
			ID:          node.ID,
			Maintainers: make([]string, 0, len(node.Maintainers)),
			Title:       node.Title,
			CreatedAt:   node.CreatedAt,
			Description: node.Description,
			DueAt:       node.DueAt,
			Progress:    node.Progress(),
			Archived:    t.archived[id],
		}
		for _, u := range node.Maintainers {
			snap.Maintainers = append(snap.Maintainers, u.ID)
		}
		if pid, ok := node.Parent(); ok {
			p := pid
			snap.ParentID = &p
		}
		out = append(out, snap)
	}
	return out
}

// RestoreTree rebuilds a tree from snapshots. Maintainers are resolved
// through the user registry; unknown maintainer IDs are dropped rather
// than failing the whole restore (the user may have been deleted since,
// which must not take the task down with it). Parent links go through
// the same cycle check as live mutations, so a corrupted snapshot can
// not smuggle in a cyclic tree.
func RestoreTree(users *identity.Registry, snaps []TodoSnapshot) (*Tree, error) {
	t := NewTree()

	// First pass: instantiate all nodes so parents can be resolved in
	// any order.
	for _, s := range snaps {
		node := &Todo{
			ID:          s.ID,
			Title:       s.Title,
			CreatedAt:   s.CreatedAt,
			Description: s.Description,
			DueAt:       s.DueAt,
		}
		node.SetProgress(s.Progress)
		for _, id := range s.Maintainers {
			if u, err := users.Lookup(id); err == nil {
				node.Maintainers = append(node.Maintainers, u)
			}
		}
		t.nodes[node.ID] = node
		t.order = append(t.order, node.ID)
		if s.Archived {
			t.archived[node.ID] = true
		}
		if node.ID >= t.next {
			t.next = node.ID + 1
		}
	}

	// Second pass: link parents.
	for _, s := range snaps {
		if s.ParentID == nil {
			continue
		}
		parent, ok := t.nodes[*s.ParentID]
		if !ok {
			continue // parent no longer exists, node becomes a root
		}
		if err := t.link(t.nodes[s.ID], parent); err != nil {
			return nil, err
		}
	}

	return t, nil
}
