package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
)

func TestBoardNumbersPendingTodos(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := reconcile.NewSnapshot([]model.Todo{
		{ID: "t1", Text: "Fix login bug", Priority: model.PriorityHigh},
		{ID: "t2", Text: "Ship it", Completed: true, CompletedAt: &at},
		{ID: "t3", Text: "Write docs", Source: model.SourceAI},
	})

	var buf bytes.Buffer
	Board(&buf, model.Project{Name: "Website"}, snap)
	out := buf.String()

	assert.Contains(t, out, "Website")
	assert.Contains(t, out, " 0. [ ]")
	assert.Contains(t, out, "Fix login bug")
	assert.Contains(t, out, " 1. [ ]")
	assert.Contains(t, out, "ai")
	assert.Contains(t, out, "Completed (1)")
	assert.Contains(t, out, "[x]")
	assert.Less(t, strings.Index(out, "Write docs"), strings.Index(out, "Ship it"))
}

func TestEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	Projects(&buf, nil)
	Todos(&buf, nil)
	Notes(&buf, nil)
	Settings(&buf, nil)
	Suggestions(&buf, nil)

	out := buf.String()
	for _, want := range []string{"No projects.", "No todos.", "No notes.", "No settings saved.", "No suggestions found."} {
		assert.Contains(t, out, want)
	}
}

func TestSettingsMasksKey(t *testing.T) {
	var buf bytes.Buffer
	Settings(&buf, &model.Settings{APIKey: "sk-ant-123456", CelebrationEnabled: true})

	assert.Contains(t, buf.String(), "*********3456")
	assert.NotContains(t, buf.String(), "sk-ant")
	assert.Contains(t, buf.String(), "celebration:  true")
}

func TestMessageListsSuggestions(t *testing.T) {
	var buf bytes.Buffer
	Message(&buf, model.Message{
		ID:      "m1",
		Role:    model.RoleAssistant,
		Content: "Try this",
		Suggestions: []model.Suggestion{
			{Text: "Fix login bug", ProjectID: "p1"},
			{Text: "Book travel", Added: true},
		},
	}, 80)

	out := buf.String()
	assert.Contains(t, out, "Try this")
	assert.Contains(t, out, "Suggestions for message m1")
	assert.Contains(t, out, " 0. [ ] Fix login bug")
	assert.Contains(t, out, "(p1)")
	assert.Contains(t, out, " 1. [x] Book travel")
}

func TestMessageFailure(t *testing.T) {
	var buf bytes.Buffer
	Message(&buf, model.Message{Role: model.RoleAssistant, Content: "Error: boom", Failed: true}, 80)
	assert.Contains(t, buf.String(), "Error: boom")
}

func TestMarkdownFallsBackOnEmpty(t *testing.T) {
	assert.Equal(t, "", Markdown("  ", 80))
	assert.Contains(t, Markdown("**bold** text", 80), "bold")
}
