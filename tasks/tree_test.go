package tasks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/homeledger/identity"
	"github.com/warp/homeledger/tasks"
)

func newTestTree(t *testing.T) (*tasks.Tree, *identity.User) {
	t.Helper()
	users := identity.NewRegistry()
	u, err := users.Create("owner", "")
	require.NoError(t, err)
	return tasks.NewTree(), u
}

func mustCreate(t *testing.T, tree *tasks.Tree, owner *identity.User, title string, parent *tasks.Todo) *tasks.Todo {
	t.Helper()
	node, err := tree.Create(tasks.TodoParams{
		Maintainers: []*identity.User{owner},
		Title:       title,
		Parent:      parent,
	})
	require.NoError(t, err)
	return node
}

// =============================================================================
// CREATION
// =============================================================================

func TestTree_Create_TrimsTitle(t *testing.T) {
	tree, owner := newTestTree(t)

	node := mustCreate(t, tree, owner, "  buy groceries  ", nil)
	assert.Equal(t, "buy groceries", node.Title)
}

func TestTree_Create_RejectsBlankTitle(t *testing.T) {
	tree, owner := newTestTree(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := tree.Create(tasks.TodoParams{
			Maintainers: []*identity.User{owner},
			Title:       title,
		})
		assert.ErrorIs(t, err, tasks.ErrEmptyTitle)
	}
	assert.Empty(t, tree.Active())
}

func TestTree_Create_AssignsCreationOrderedIDs(t *testing.T) {
	tree, owner := newTestTree(t)

	first := mustCreate(t, tree, owner, "first", nil)
	second := mustCreate(t, tree, owner, "second", nil)
	third := mustCreate(t, tree, owner, "third", nil)

	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, second.ID+1, third.ID)
}

func TestTree_Create_WithParent(t *testing.T) {
	tree, owner := newTestTree(t)

	root := mustCreate(t, tree, owner, "root", nil)
	child := mustCreate(t, tree, owner, "child", root)

	pid, ok := child.Parent()
	require.True(t, ok)
	assert.Equal(t, root.ID, pid)
	assert.Equal(t, 1, tree.Level(child))
}

// =============================================================================
// RE-PARENTING AND CYCLE SAFETY
// =============================================================================

func TestTree_SetParent_NilClearsLink(t *testing.T) {
	tree, owner := newTestTree(t)
	root := mustCreate(t, tree, owner, "root", nil)
	child := mustCreate(t, tree, owner, "child", root)

	require.NoError(t, tree.SetParent(child, nil))
	_, ok := child.Parent()
	assert.False(t, ok)
	assert.Equal(t, 0, tree.Level(child))
}

func TestTree_SetParent_RejectsSelf(t *testing.T) {
	tree, owner := newTestTree(t)
	node := mustCreate(t, tree, owner, "loner", nil)

	err := tree.SetParent(node, node)
	assert.ErrorIs(t, err, tasks.ErrSelfParent)

	_, ok := node.Parent()
	assert.False(t, ok, "failed mutation must not link anything")
}

func TestTree_SetParent_RejectsCycle_TreeUnchanged(t *testing.T) {
	// GIVEN: root -> child -> grandchild
	// WHEN:  root is re-parented under grandchild
	// THEN:  rejected as a cycle and every link and level is unchanged

	tree, owner := newTestTree(t)
	root := mustCreate(t, tree, owner, "root", nil)
	child := mustCreate(t, tree, owner, "child", root)
	grandchild := mustCreate(t, tree, owner, "grandchild", child)

	err := tree.SetParent(root, grandchild)
	assert.ErrorIs(t, err, tasks.ErrCyclicParent)

	var cycleErr *tasks.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, root.ID, cycleErr.NodeID)
	assert.Equal(t, grandchild.ID, cycleErr.ParentID)

	_, ok := root.Parent()
	assert.False(t, ok)
	assert.Equal(t, 0, tree.Level(root))
	assert.Equal(t, 1, tree.Level(child))
	assert.Equal(t, 2, tree.Level(grandchild))
}

func TestTree_Level_ReflectsCurrentShape(t *testing.T) {
	// Level is computed, not cached: moving a subtree must be visible
	// immediately in every descendant's level.

	tree, owner := newTestTree(t)
	a := mustCreate(t, tree, owner, "a", nil)
	b := mustCreate(t, tree, owner, "b", a)
	c := mustCreate(t, tree, owner, "c", b)
	other := mustCreate(t, tree, owner, "other", nil)

	assert.Equal(t, 2, tree.Level(c))

	// Move b (with its subtree) under another root's child chain.
	deeper := mustCreate(t, tree, owner, "deeper", other)
	require.NoError(t, tree.SetParent(b, deeper))

	assert.Equal(t, 2, tree.Level(b))
	assert.Equal(t, 3, tree.Level(c))
	assert.Equal(t, 0, tree.Level(a))
}

func TestTree_ParentChain_AlwaysTerminates(t *testing.T) {
	// After arbitrary valid re-parenting, following Parent() from any
	// node must reach a root within len(nodes) steps.

	tree, owner := newTestTree(t)
	var nodes []*tasks.Todo
	for i := 0; i < 8; i++ {
		nodes = append(nodes, mustCreate(t, tree, owner, "node", nil))
	}

	// Chain them, then shuffle some links around (legal and illegal).
	for i := 1; i < len(nodes); i++ {
		require.NoError(t, tree.SetParent(nodes[i], nodes[i-1]))
	}
	assert.Error(t, tree.SetParent(nodes[0], nodes[7]))
	require.NoError(t, tree.SetParent(nodes[4], nil))
	require.NoError(t, tree.SetParent(nodes[1], nodes[5]))

	for _, n := range nodes {
		steps := 0
		cur := n
		for {
			pid, ok := cur.Parent()
			if !ok {
				break
			}
			steps++
			require.LessOrEqual(t, steps, len(nodes), "ancestor walk must terminate")
			cur, _ = tree.Lookup(pid)
		}
	}
}

// =============================================================================
// ARCHIVE PARTITION
// =============================================================================

func TestTree_ToggleArchive(t *testing.T) {
	tree, owner := newTestTree(t)
	node := mustCreate(t, tree, owner, "chore", nil)

	assert.True(t, tree.ToggleArchive(node))
	assert.True(t, tree.IsArchived(node))
	assert.Empty(t, tree.Active())
	assert.Len(t, tree.Archived(), 1)

	assert.False(t, tree.ToggleArchive(node))
	assert.False(t, tree.IsArchived(node))
	assert.Len(t, tree.Active(), 1)
	assert.Empty(t, tree.Archived())
}

func TestTree_ToggleArchive_ChildrenStay(t *testing.T) {
	// Archiving a parent does not cascade to its subtasks.

	tree, owner := newTestTree(t)
	root := mustCreate(t, tree, owner, "root", nil)
	child := mustCreate(t, tree, owner, "child", root)

	tree.ToggleArchive(root)

	assert.True(t, tree.IsArchived(root))
	assert.False(t, tree.IsArchived(child))
}

// =============================================================================
// COPY
// =============================================================================

func TestTree_Copy_IsIndependent(t *testing.T) {
	tree, owner := newTestTree(t)
	root := mustCreate(t, tree, owner, "root", nil)
	original := mustCreate(t, tree, owner, "task", root)
	original.SetProgress(40)

	dup, err := tree.Copy(original)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, original.Title, dup.Title)
	assert.Equal(t, 40, dup.Progress())
	pid, ok := dup.Parent()
	require.True(t, ok)
	assert.Equal(t, root.ID, pid)

	// Mutating the copy leaves the original alone.
	dup.SetProgress(90)
	assert.Equal(t, 40, original.Progress())
}

// =============================================================================
// PROGRESS
// =============================================================================

func TestTodo_SetProgress_ClampsAtZero(t *testing.T) {
	tree, owner := newTestTree(t)
	node := mustCreate(t, tree, owner, "task", nil)

	node.SetProgress(-10)
	assert.Equal(t, 0, node.Progress())

	node.SetProgress(150)
	assert.Equal(t, 150, node.Progress())
}

// =============================================================================
// SNAPSHOT ROUND-TRIP
// =============================================================================

func TestTree_Snapshot_RoundTrip(t *testing.T) {
	users := identity.NewRegistry()
	owner, err := users.Create("owner", "")
	require.NoError(t, err)

	tree := tasks.NewTree()
	root := mustCreate(t, tree, owner, "root", nil)
	child := mustCreate(t, tree, owner, "child", root)
	child.SetProgress(30)
	tree.ToggleArchive(root)

	restored, err := tasks.RestoreTree(users, tree.Snapshot())
	require.NoError(t, err)

	rChild, err := restored.Lookup(child.ID)
	require.NoError(t, err)
	assert.Equal(t, "child", rChild.Title)
	assert.Equal(t, 30, rChild.Progress())
	pid, ok := rChild.Parent()
	require.True(t, ok)
	assert.Equal(t, root.ID, pid)

	rRoot, err := restored.Lookup(root.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsArchived(rRoot))
	require.Len(t, rRoot.Maintainers, 1)
	assert.Equal(t, "owner", rRoot.Maintainers[0].ID)

	// New creations continue the ID sequence.
	next := mustCreate(t, restored, owner, "next", nil)
	assert.Equal(t, child.ID+1, next.ID)
}
