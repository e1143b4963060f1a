package testutil

import (
	"context"
	"testing"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// MustAddProject creates a project or fails the test.
func MustAddProject(t *testing.T, s store.Store, name string) *model.Project {
	t.Helper()

	p, err := s.AddProject(context.Background(), name, "")
	if err != nil {
		t.Fatalf("adding project %q: %v", name, err)
	}
	return p
}

// MustAddTodo creates a manual todo or fails the test.
func MustAddTodo(t *testing.T, s store.Store, projectID, text string) *model.Todo {
	t.Helper()

	todo, err := s.AddTodo(context.Background(), projectID, text, model.SourceManual)
	if err != nil {
		t.Fatalf("adding todo %q: %v", text, err)
	}
	return todo
}
