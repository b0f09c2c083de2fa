/*
errors.go - Error types for the task tree

ERROR CATEGORIES:
  1. Creation errors  - empty title
  2. Nesting errors   - self-parent, ancestor cycle
  3. Lookup errors    - unknown node ID

All failed mutations leave the tree exactly as it was.
*/
package tasks

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyTitle is returned when a todo title is blank after trimming.
	ErrEmptyTitle = errors.New("todo must have a non-empty title")

	// ErrSelfParent is returned when a todo is set as its own parent.
	ErrSelfParent = errors.New("todo cannot be its own parent")

	// ErrCyclicParent is returned when the new parent is a descendant of
	// the node, which would close a cycle in the tree.
	ErrCyclicParent = errors.New("todo cannot have a subtask as parent")

	// ErrNotFound is returned for unknown todo IDs.
	ErrNotFound = errors.New("no such todo")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// CycleError reports a rejected reparenting: parent is a descendant of node.
type CycleError struct {
	NodeID   int64
	ParentID int64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("todo %d cannot take descendant %d as parent", e.NodeID, e.ParentID)
}

func (e *CycleError) Unwrap() error { return ErrCyclicParent }

// NotFoundError reports a lookup of an unknown todo ID.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such todo %d", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
