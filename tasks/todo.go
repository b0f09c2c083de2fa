package tasks

import (
	"time"

	"github.com/warp/homeledger/identity"
)

// Todo is a single task node. Nodes are identified by creation-ordered
// IDs; the parent link is stored as an ID so the relation stays a weak
// reference into the owning Tree (never a pointer that could outlive it).
//
// Parent and progress are mutated through the Tree / the setter so the
// tree invariants (no cycles, progress >= 0) cannot be bypassed.
type Todo struct {
	ID          int64
	Maintainers []*identity.User
	Title       string
	CreatedAt   time.Time
	Description string
	DueAt       *time.Time

	parent   *int64
	progress int
}

// Parent returns the parent node ID, if any.
func (t *Todo) Parent() (int64, bool) {
	if t.parent == nil {
		return 0, false
	}
	return *t.parent, true
}

// Progress returns the task's progress in percent.
func (t *Todo) Progress() int { return t.progress }

// SetProgress updates the progress, clamping below at zero.
func (t *Todo) SetProgress(p int) {
	if p < 0 {
		p = 0
	}
	t.progress = p
}
