package board

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/render"
	"github.com/nhle/smarttodo/internal/theme"
)

// TodoItem wraps a model.Todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo model.Todo
	// Position is the index within the pending segment, or -1 for a
	// completed todo.
	Position int
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Text }

// ItemDelegate implements list.ItemDelegate for rendering board rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single board row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TodoItem)
	if !ok {
		return
	}

	num := "   "
	if it.Position >= 0 {
		num = fmt.Sprintf("%2d.", it.Position)
	}
	line := num + " " + render.TodoLine(it.Todo)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, "  "+line)
}

func items(pending, completed []model.Todo) []list.Item {
	out := make([]list.Item, 0, len(pending)+len(completed))
	for i, t := range pending {
		out = append(out, TodoItem{Todo: t, Position: i})
	}
	for _, t := range completed {
		out = append(out, TodoItem{Todo: t, Position: -1})
	}
	return out
}
