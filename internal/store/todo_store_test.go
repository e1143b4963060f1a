package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/store"
	"github.com/nhle/smarttodo/tests/testutil"
)

func TestAddTodoDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")

	todo, err := s.AddTodo(ctx, p.ID, " Fix login bug ", "")
	require.NoError(t, err)
	assert.Equal(t, "Fix login bug", todo.Text)
	assert.Equal(t, p.ID, todo.ProjectID)
	assert.Equal(t, model.SourceManual, todo.Source)
	assert.Equal(t, model.PriorityMedium, todo.Priority)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.CompletedAt)
	assert.Nil(t, todo.Position)

	ai, err := s.AddTodo(ctx, p.ID, "Write release notes", model.SourceAI)
	require.NoError(t, err)
	assert.Equal(t, model.SourceAI, ai.Source)
}

func TestAddTodoValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")

	tests := []struct {
		name      string
		projectID string
		text      string
		source    model.Source
		want      error
	}{
		{name: "empty text", projectID: p.ID, text: "  ", want: store.ErrValidation},
		{name: "bad source", projectID: p.ID, text: "ok text", source: "robot", want: store.ErrValidation},
		{name: "missing project", projectID: "nope", text: "ok text", want: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTodo(ctx, tt.projectID, tt.text, tt.source)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListTodosNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	other := testutil.MustAddProject(t, s, "Other")

	first := testutil.MustAddTodo(t, s, p.ID, "first")
	second := testutil.MustAddTodo(t, s, p.ID, "second")
	elsewhere := testutil.MustAddTodo(t, s, other.ID, "elsewhere")

	all, err := s.ListTodos(ctx, store.TodoFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{elsewhere.ID, second.ID, first.ID}, todoIDs(all))

	scoped, err := s.ListTodos(ctx, store.TodoFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, todoIDs(scoped))
}

func TestToggleTodo(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	todo := testutil.MustAddTodo(t, s, p.ID, "Fix login bug")

	done, err := s.ToggleTodo(ctx, todo.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)

	reopened, err := s.ToggleTodo(ctx, todo.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)

	_, err = s.ToggleTodo(ctx, "missing", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateTodoPriority(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	todo := testutil.MustAddTodo(t, s, p.ID, "Fix login bug")

	updated, err := s.UpdateTodoPriority(ctx, todo.ID, model.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	_, err = s.UpdateTodoPriority(ctx, todo.ID, "urgent")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = s.UpdateTodoPriority(ctx, "missing", model.PriorityLow)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCyclePriority(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	todo := testutil.MustAddTodo(t, s, p.ID, "Fix login bug")

	var seen []model.Priority
	for i := 0; i < 3; i++ {
		next, err := s.CyclePriority(ctx, todo.ID)
		require.NoError(t, err)
		seen = append(seen, next.Priority)
	}
	assert.Equal(t, []model.Priority{
		model.PriorityLow, model.PriorityHigh, model.PriorityMedium,
	}, seen)

	_, err := s.CyclePriority(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReorderTodos(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	other := testutil.MustAddProject(t, s, "Other")

	a := testutil.MustAddTodo(t, s, p.ID, "a")
	b := testutil.MustAddTodo(t, s, p.ID, "b")
	foreign := testutil.MustAddTodo(t, s, other.ID, "foreign")

	require.NoError(t, s.ReorderTodos(ctx, p.ID, []string{a.ID, b.ID}))

	gotA, err := s.GetTodo(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.Position)
	assert.Equal(t, 1, *gotA.Position)

	gotB, err := s.GetTodo(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, gotB.Position)
	assert.Equal(t, 2, *gotB.Position)

	err = s.ReorderTodos(ctx, p.ID, []string{b.ID, foreign.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The failed reorder rolled back.
	gotB, err = s.GetTodo(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, *gotB.Position)

	assert.ErrorIs(t, s.ReorderTodos(ctx, "missing", nil), store.ErrNotFound)
}

func TestDeleteTodo(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	todo := testutil.MustAddTodo(t, s, p.ID, "Fix login bug")

	require.NoError(t, s.DeleteTodo(ctx, todo.ID))

	_, err := s.GetTodo(ctx, todo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTodo(ctx, todo.ID), store.ErrNotFound)
}

func TestConcurrentToggleAndDelete(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")

	const n = 20
	todos := make([]*model.Todo, n)
	for i := range todos {
		todos[i] = testutil.MustAddTodo(t, s, p.ID, "racing todo")
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for _, todo := range todos {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			if _, err := s.ToggleTodo(ctx, id, true); err != nil {
				errs <- err
			}
		}(todo.ID)
		go func(id string) {
			defer wg.Done()
			if err := s.DeleteTodo(ctx, id); err != nil {
				errs <- err
			}
		}(todo.ID)
	}
	wg.Wait()
	close(errs)

	// A toggle that lost the race sees the todo gone; nothing else fails.
	for err := range errs {
		assert.True(t, errors.Is(err, store.ErrNotFound), "unexpected error: %v", err)
	}

	remaining, err := s.ListTodos(ctx, store.TodoFilter{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
