package reconcile

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/smarttodo/internal/model"
)

// ErrInvalidMove is returned by Board.Move for an unknown project or an
// index outside the pending segment.
var ErrInvalidMove = errors.New("invalid move")

// Snapshot is an immutable, arranged view of one project's todos: pending
// todos in manual order followed by completed ones.
type Snapshot struct {
	todos []model.Todo
}

// NewSnapshot builds the first snapshot of a session from store data.
func NewSnapshot(todos []model.Todo) Snapshot {
	return Snapshot{todos: InitialOrder(todos)}
}

// Merge folds an authoritative list into prev and returns the next
// snapshot. When Changed reports no structural change, the order of prev
// is kept and only field values are refreshed.
func Merge(prev Snapshot, authoritative []model.Todo) Snapshot {
	var next []model.Todo
	if Changed(prev.todos, authoritative) {
		next = Reconcile(prev.todos, authoritative)
	} else {
		next = Refresh(prev.todos, authoritative)
	}
	return Snapshot{todos: Arrange(next)}
}

// Todos returns a copy of the arranged todos.
func (s Snapshot) Todos() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Pending returns the pending todos in manual order.
func (s Snapshot) Pending() []model.Todo {
	n := Pending(s.todos)
	out := make([]model.Todo, n)
	copy(out, s.todos[:n])
	return out
}

// Completed returns the completed todos, most recently completed first.
func (s Snapshot) Completed() []model.Todo {
	n := Pending(s.todos)
	out := make([]model.Todo, len(s.todos)-n)
	copy(out, s.todos[n:])
	return out
}

// Move returns a snapshot with one pending todo moved within the pending
// segment.
func (s Snapshot) Move(from, to int) (Snapshot, error) {
	n := Pending(s.todos)
	if from < 0 || from >= n || to < 0 || to >= n {
		return s, fmt.Errorf("%w: move %d -> %d with %d pending todos", ErrInvalidMove, from, to, n)
	}
	pending := MoveItem(s.todos[:n], from, to)
	return Snapshot{todos: append(pending, s.todos[n:]...)}, nil
}

// Board holds the per-project working order of one session. It is safe for
// concurrent use.
type Board struct {
	mu       sync.RWMutex
	projects map[string]Snapshot
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{projects: make(map[string]Snapshot)}
}

// Refresh merges a full authoritative todo list, grouped by project, into
// every snapshot. Projects absent from todos end up empty.
func (b *Board) Refresh(todos []model.Todo) {
	grouped := make(map[string][]model.Todo)
	for _, t := range todos {
		grouped[t.ProjectID] = append(grouped[t.ProjectID], t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, prev := range b.projects {
		b.projects[id] = Merge(prev, grouped[id])
	}
	for id, list := range grouped {
		if _, ok := b.projects[id]; !ok {
			b.projects[id] = NewSnapshot(list)
		}
	}
}

// RefreshProject merges the authoritative todos of one project and returns
// the resulting snapshot.
func (b *Board) RefreshProject(projectID string, todos []model.Todo) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, ok := b.projects[projectID]
	next := NewSnapshot(todos)
	if ok {
		next = Merge(prev, todos)
	}
	b.projects[projectID] = next
	return next
}

// Snapshot returns the current snapshot of a project.
func (b *Board) Snapshot(projectID string) (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.projects[projectID]
	return s, ok
}

// Move reorders a pending todo of a project and returns the new pending id
// order for persistence.
func (b *Board) Move(projectID string, from, to int) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, ok := b.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %s is not on the board", ErrInvalidMove, projectID)
	}
	next, err := prev.Move(from, to)
	if err != nil {
		return nil, err
	}
	b.projects[projectID] = next
	return IDs(next.Pending()), nil
}

// Forget drops a project from the board.
func (b *Board) Forget(projectID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.projects, projectID)
}
