package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smarttodo/internal/model"
)

func TestMergeKeepsDragOrderOnPriorityChange(t *testing.T) {
	snap := NewSnapshot(list("a", "b", "c"))
	snap, err := snap.Move(0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "a"}, IDs(snap.Todos()))

	authoritative := list("a", "b", "c")
	authoritative[0].Priority = model.PriorityHigh

	next := Merge(snap, authoritative)
	assert.Equal(t, []string{"b", "c", "a"}, IDs(next.Todos()))
	assert.Equal(t, model.PriorityHigh, next.Todos()[2].Priority)
}

func TestMergeMovesCompletedTodoOut(t *testing.T) {
	snap := NewSnapshot(list("a", "b", "c"))

	authoritative := list("a", "b", "c")
	authoritative[0] = done("a", time.Minute)

	next := Merge(snap, authoritative)
	assert.Equal(t, []string{"b", "c"}, IDs(next.Pending()))
	assert.Equal(t, []string{"a"}, IDs(next.Completed()))
}

func TestMergeInsertsNewTodoFirst(t *testing.T) {
	snap := NewSnapshot(list("a", "b"))
	snap, err := snap.Move(1, 0)
	require.NoError(t, err)

	next := Merge(snap, list("n", "a", "b"))
	assert.Equal(t, []string{"n", "b", "a"}, IDs(next.Todos()))
}

func TestSnapshotMoveRejectsCompletedSegment(t *testing.T) {
	snap := NewSnapshot([]model.Todo{todo("a"), todo("b"), done("c", time.Minute)})

	_, err := snap.Move(0, 2)
	assert.ErrorIs(t, err, ErrInvalidMove)

	_, err = snap.Move(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestBoard(t *testing.T) {
	b := NewBoard()

	other := todo("x")
	other.ProjectID = "p2"
	b.Refresh(append(list("a", "b", "c"), other))

	ids, err := b.Move("p1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	// A poll with the same set keeps the drag result.
	b.Refresh(append(list("a", "b", "c"), other))
	snap, ok := b.Snapshot("p1")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a"}, IDs(snap.Todos()))

	// A project whose todos vanished ends up empty.
	b.Refresh(list("a", "b", "c"))
	snap, ok = b.Snapshot("p2")
	require.True(t, ok)
	assert.Empty(t, snap.Todos())

	_, err = b.Move("missing", 0, 1)
	assert.ErrorIs(t, err, ErrInvalidMove)

	b.Forget("p2")
	_, ok = b.Snapshot("p2")
	assert.False(t, ok)
}

func TestBoardRefreshProject(t *testing.T) {
	b := NewBoard()

	snap := b.RefreshProject("p1", list("a", "b"))
	assert.Equal(t, []string{"a", "b"}, IDs(snap.Todos()))

	_, err := b.Move("p1", 0, 1)
	require.NoError(t, err)

	snap = b.RefreshProject("p1", list("c", "a", "b"))
	assert.Equal(t, []string{"c", "b", "a"}, IDs(snap.Todos()))
}
