// Package render formats entities for terminal output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/theme"
)

const timeFormat = "2006-01-02 15:04"

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Projects writes one line per project.
func Projects(w io.Writer, projects []model.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("No projects."))
		return
	}
	for _, p := range projects {
		line := p.Name
		if p.Description != "" {
			line += " - " + p.Description
		}
		if p.Archived {
			line = theme.ArchivedStyle.Render(line + " (archived)")
		}
		fmt.Fprintf(w, "%s  %s\n", theme.IDStyle.Render(p.ID), line)
	}
}

// Todos writes one line per todo in the given order.
func Todos(w io.Writer, todos []model.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("No todos."))
		return
	}
	for _, t := range todos {
		fmt.Fprintln(w, TodoLine(t))
	}
}

// Board writes a project's pending todos, numbered for moves, followed by
// its completed ones.
func Board(w io.Writer, project model.Project, snap reconcile.Snapshot) {
	fmt.Fprintln(w, theme.HeaderStyle.Render(project.Name))

	pending := snap.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("Nothing pending."))
	}
	for i, t := range pending {
		fmt.Fprintf(w, "%2d. %s\n", i, TodoLine(t))
	}

	completed := snap.Completed()
	if len(completed) > 0 {
		fmt.Fprintf(w, "\nCompleted (%d)\n", len(completed))
		for _, t := range completed {
			fmt.Fprintf(w, "    %s\n", TodoLine(t))
		}
	}
}

// Notes writes each note under its creation time.
func Notes(w io.Writer, notes []model.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("No notes."))
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s  %s\n", theme.IDStyle.Render(n.CreatedAt.Local().Format(timeFormat)), n.Content)
	}
}

// Settings writes the settings record with the API key masked.
func Settings(w io.Writer, s *model.Settings) {
	if s == nil {
		fmt.Fprintln(w, theme.HelpStyle.Render("No settings saved."))
		return
	}
	fmt.Fprintf(w, "api key:      %s\n", mask(s.APIKey))
	fmt.Fprintf(w, "celebration:  %t\n", s.CelebrationEnabled)
}

// TodoLine renders a todo as one list line.
func TodoLine(t model.Todo) string {
	dot := theme.PriorityStyle(t.Priority).Render("●")
	box := "[ ]"
	text := t.Text
	if t.Completed {
		box = "[x]"
		text = theme.DoneStyle.Render(text)
	}

	line := fmt.Sprintf("%s %s %s %s", box, dot, text, theme.IDStyle.Render(t.ID))
	if t.Source == model.SourceAI {
		line += theme.SourceLabelStyle(t.Source).Render("ai")
	}
	return line
}

func mask(key string) string {
	if key == "" {
		return "(not set)"
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
