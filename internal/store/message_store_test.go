package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/store"
	"github.com/nhle/smarttodo/tests/testutil"
)

func TestSaveMessageUpsert(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	msg := model.Message{
		ID:        "m1",
		Role:      model.RoleAssistant,
		Content:   "• Fix login bug",
		Timestamp: ts,
		Suggestions: []model.Suggestion{
			{Text: "Fix login bug", ProjectID: "p1"},
		},
	}

	require.NoError(t, s.SaveMessage(ctx, msg))
	require.NoError(t, s.SaveMessage(ctx, msg))

	msg.Suggestions[0].Added = true
	require.NoError(t, s.SaveMessage(ctx, msg))

	messages, err := s.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
	assert.True(t, messages[0].Timestamp.Equal(ts))
	require.Len(t, messages[0].Suggestions, 1)
	assert.True(t, messages[0].Suggestions[0].Added)
	assert.Equal(t, "p1", messages[0].Suggestions[0].ProjectID)
}

func TestListMessagesOldestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"late", "early", "middle"} {
		offset := []time.Duration{2 * time.Minute, 0, time.Minute}[i]
		require.NoError(t, s.SaveMessage(ctx, model.Message{
			ID:        id,
			Role:      model.RoleUser,
			Content:   id,
			Timestamp: base.Add(offset),
		}))
	}

	messages, err := s.ListMessages(ctx)
	require.NoError(t, err)
	var ids []string
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"early", "middle", "late"}, ids)
}

func TestSaveMessageValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	err := s.SaveMessage(ctx, model.Message{Role: model.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, store.ErrValidation)

	err = s.SaveMessage(ctx, model.Message{ID: "x", Role: "system", Content: "hi"})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = s.GetMessage(ctx, "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettingsLastWriteWins(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SaveSettings(ctx, model.Settings{APIKey: "k1", CelebrationEnabled: true}))
	require.NoError(t, s.SaveSettings(ctx, model.Settings{APIKey: "k2"}))

	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.Settings{APIKey: "k2"}, *got)
}

func TestNotesNewestFirstAndScoped(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := testutil.MustAddProject(t, s, "Website")
	other := testutil.MustAddProject(t, s, "Other")

	first, err := s.AddNote(ctx, p.ID, "kickoff notes")
	require.NoError(t, err)
	second, err := s.AddNote(ctx, p.ID, "retro notes")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, other.ID, "unrelated")
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, store.NoteFilter{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	_, err = s.AddNote(ctx, p.ID, " ")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = s.AddNote(ctx, "missing", "content")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
