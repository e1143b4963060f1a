package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smarttodo/internal/ai"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/service"
	"github.com/nhle/smarttodo/internal/store"
	"github.com/nhle/smarttodo/tests/testutil"
)

// fakeGenerator returns a canned reply or error and records the request.
type fakeGenerator struct {
	reply string
	err   error
	block bool
	got   ai.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req ai.Request) (string, error) {
	f.got = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func newService(t *testing.T, gen ai.Generator) (*service.Service, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	return service.New(s, service.Options{Generator: gen, GenerateTimeout: 100 * time.Millisecond}), s
}

func TestListProjectsActiveOnly(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	keep, err := svc.AddProject(ctx, "Website", "")
	require.NoError(t, err)
	old, err := svc.AddProject(ctx, "Old", "")
	require.NoError(t, err)
	_, err = svc.ArchiveProject(ctx, old.ID)
	require.NoError(t, err)

	active, err := svc.ListProjects(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)

	all, err := svc.ListProjects(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	archived, err := svc.ListArchivedProjects(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, old.ID, archived[0].ID)
}

func TestSendMessageSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: "Try these:\n• Fix login bug on Website\n• Here are more\n• x"}
	svc, s := newService(t, gen)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	testutil.MustAddTodo(t, s, p.ID, "Write the copy")

	reply, err := svc.SendMessage(ctx, "  what next?  ")
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, []model.Suggestion{{Text: "Fix login bug on Website", ProjectID: p.ID}}, reply.Suggestions)

	assert.Equal(t, "what next?", gen.got.Prompt)
	assert.Contains(t, gen.got.System, "**Website**")
	assert.Contains(t, gen.got.System, "Write the copy")

	history, err := svc.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "what next?", history[0].Content)
	assert.Equal(t, reply.ID, history[1].ID)
}

func TestSendMessageFailureKeepsOnlyUserTurn(t *testing.T) {
	tests := []struct {
		name string
		gen  ai.Generator
	}{
		{name: "upstream error", gen: &fakeGenerator{err: fmt.Errorf("%w: API error (500): boom", ai.ErrUpstream)}},
		{name: "plain error", gen: &fakeGenerator{err: errors.New("connection reset")}},
		{name: "timeout", gen: &fakeGenerator{block: true}},
		{name: "no generator", gen: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s := newService(t, tt.gen)
			ctx := context.Background()
			testutil.MustAddProject(t, s, "Website")

			reply, err := svc.SendMessage(ctx, "hello")
			require.NoError(t, err)
			assert.True(t, reply.Failed)
			assert.Equal(t, model.RoleAssistant, reply.Role)
			assert.Contains(t, reply.Content, "Error: ")
			assert.Empty(t, reply.Suggestions)

			history, err := svc.ListMessages(ctx)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, model.RoleUser, history[0].Role)

			assert.ErrorIs(t, svc.SaveMessage(ctx, *reply), store.ErrValidation)
		})
	}
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	svc, _ := newService(t, &fakeGenerator{reply: "hi"})

	_, err := svc.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, store.ErrValidation)

	history, err := svc.ListMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAcceptSuggestion(t *testing.T) {
	gen := &fakeGenerator{reply: "• Fix login bug\n• Update Garden docs"}
	svc, s := newService(t, gen)
	ctx := context.Background()
	website := testutil.MustAddProject(t, s, "Website")
	garden := testutil.MustAddProject(t, s, "Garden")

	reply, err := svc.SendMessage(ctx, "ideas?")
	require.NoError(t, err)
	require.Len(t, reply.Suggestions, 2)
	assert.Empty(t, reply.Suggestions[0].ProjectID)
	assert.Equal(t, garden.ID, reply.Suggestions[1].ProjectID)

	// No project known for the first suggestion.
	_, _, err = svc.AcceptSuggestion(ctx, reply.ID, 0, "")
	assert.ErrorIs(t, err, store.ErrValidation)

	todo, msg, err := svc.AcceptSuggestion(ctx, reply.ID, 0, website.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fix login bug", todo.Text)
	assert.Equal(t, model.SourceAI, todo.Source)
	assert.Equal(t, website.ID, todo.ProjectID)
	assert.True(t, msg.Suggestions[0].Added)

	todo, _, err = svc.AcceptSuggestion(ctx, reply.ID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, garden.ID, todo.ProjectID)

	_, _, err = svc.AcceptSuggestion(ctx, reply.ID, 1, "")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, _, err = svc.AcceptSuggestion(ctx, reply.ID, 5, "")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, _, err = svc.AcceptSuggestion(ctx, "missing", 0, "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	saved, err := s.GetMessage(ctx, reply.ID)
	require.NoError(t, err)
	assert.True(t, saved.Suggestions[0].Added)
	assert.True(t, saved.Suggestions[1].Added)
	assert.Equal(t, website.ID, saved.Suggestions[0].ProjectID)

	snap, ok := svc.Board().Snapshot(website.ID)
	require.True(t, ok)
	assert.Len(t, snap.Todos(), 1)
}

func TestMoveTodoPersistsOrder(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")

	a := testutil.MustAddTodo(t, s, p.ID, "a")
	b := testutil.MustAddTodo(t, s, p.ID, "b")
	c := testutil.MustAddTodo(t, s, p.ID, "c")

	snap, err := svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{c.ID, b.ID, a.ID}, reconcile.IDs(snap.Todos()))

	snap, err = svc.MoveTodo(ctx, p.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, reconcile.IDs(snap.Todos()))

	// A priority change does not disturb the manual order.
	_, err = svc.CyclePriority(ctx, a.ID)
	require.NoError(t, err)
	snap, err = svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, reconcile.IDs(snap.Todos()))

	// A new session sees the stored order, with a new todo on top.
	d := testutil.MustAddTodo(t, s, p.ID, "d")
	fresh := service.New(s, service.Options{})
	snap, err = fresh.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{d.ID, b.ID, a.ID, c.ID}, reconcile.IDs(snap.Todos()))

	_, err = svc.MoveTodo(ctx, p.ID, 0, 9)
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = svc.MoveTodo(ctx, "missing", 0, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleMovesTodoToCompleted(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	a := testutil.MustAddTodo(t, s, p.ID, "a")
	b := testutil.MustAddTodo(t, s, p.ID, "b")

	_, err := svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.ToggleTodo(ctx, b.ID, true)
	require.NoError(t, err)

	snap, ok := svc.Board().Snapshot(p.ID)
	require.True(t, ok)
	assert.Equal(t, []string{a.ID}, reconcile.IDs(snap.Pending()))
	assert.Equal(t, []string{b.ID}, reconcile.IDs(snap.Completed()))
}

func TestReopenedTodoKeepsSessionSlotAcrossReload(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	alpha := testutil.MustAddTodo(t, s, p.ID, "Alpha")
	beta := testutil.MustAddTodo(t, s, p.ID, "Beta")
	gamma := testutil.MustAddTodo(t, s, p.ID, "Gamma")

	_, err := svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	snap, err := svc.MoveTodo(ctx, p.ID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, []string{alpha.ID, gamma.ID, beta.ID}, reconcile.IDs(snap.Pending()))

	_, err = svc.ToggleTodo(ctx, alpha.ID, true)
	require.NoError(t, err)
	_, err = svc.ToggleTodo(ctx, alpha.ID, false)
	require.NoError(t, err)

	session, ok := svc.Board().Snapshot(p.ID)
	require.True(t, ok)
	want := []string{gamma.ID, beta.ID, alpha.ID}
	assert.Equal(t, want, reconcile.IDs(session.Pending()))

	reload, err := service.New(s, service.Options{}).ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, reconcile.IDs(reload.Pending()))
}

func TestConcurrentMovesPersistBoardOrder(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	for i := range 4 {
		testutil.MustAddTodo(t, s, p.ID, fmt.Sprintf("todo %d", i))
	}
	_, err := svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MoveTodo(ctx, p.ID, i%4, (i+1)%4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	session, ok := svc.Board().Snapshot(p.ID)
	require.True(t, ok)
	reload, err := service.New(s, service.Options{}).ProjectBoard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.IDs(session.Pending()), reconcile.IDs(reload.Pending()))
}

func TestConcurrentAcceptAddsOneTodo(t *testing.T) {
	gen := &fakeGenerator{reply: "• Fix login bug"}
	svc, s := newService(t, gen)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")

	reply, err := svc.SendMessage(ctx, "ideas?")
	require.NoError(t, err)
	require.Len(t, reply.Suggestions, 1)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.AcceptSuggestion(ctx, reply.ID, 0, "")
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, store.ErrValidation)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	todos, err := svc.ListTodos(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestDeleteProjectCascades(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	testutil.MustAddTodo(t, s, p.ID, "a")
	_, err := svc.AddNote(ctx, p.ID, "kickoff")
	require.NoError(t, err)
	_, err = svc.ProjectBoard(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))

	todos, err := svc.ListTodos(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, todos)
	notes, err := svc.ListNotes(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, ok := svc.Board().Snapshot(p.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, svc.DeleteProject(ctx, p.ID), store.ErrNotFound)
}

func TestExtractSuggestionsUsesActiveProjects(t *testing.T) {
	svc, s := newService(t, nil)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	old := testutil.MustAddProject(t, s, "Archive me")
	_, err := svc.ArchiveProject(ctx, old.ID)
	require.NoError(t, err)

	got, err := svc.ExtractSuggestions(ctx, "- Book travel")
	require.NoError(t, err)
	assert.Equal(t, []model.Suggestion{{Text: "Book travel", ProjectID: p.ID}}, got)
}
