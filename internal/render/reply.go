package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/theme"
)

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// Markdown formats assistant text for the terminal, falling back to the
// raw text when rendering fails.
func Markdown(text string, width int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	renderer := markdownRenderer(width)
	if renderer == nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Message writes one conversation turn: the role, the content, and any
// suggestions numbered for acceptance.
func Message(w io.Writer, msg model.Message, width int) {
	label := theme.RoleStyle(msg.Role).Render(string(msg.Role))
	fmt.Fprintf(w, "%s %s\n", label, theme.IDStyle.Render(msg.Timestamp.Local().Format(timeFormat)))

	if msg.Failed {
		fmt.Fprintln(w, theme.ErrorStyle.Render(msg.Content))
		return
	}
	if msg.Role == model.RoleAssistant {
		fmt.Fprintln(w, Markdown(msg.Content, width))
	} else {
		fmt.Fprintln(w, msg.Content)
	}

	if len(msg.Suggestions) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSuggestions for message %s:\n", msg.ID)
	for i, s := range msg.Suggestions {
		state := "[ ]"
		if s.Added {
			state = "[x]"
		}
		project := ""
		if s.ProjectID != "" {
			project = " " + theme.IDStyle.Render("("+s.ProjectID+")")
		}
		fmt.Fprintf(w, "%2d. %s %s%s\n", i, state, s.Text, project)
	}
}

// Suggestions writes extracted candidates without a parent message.
func Suggestions(w io.Writer, list []model.Suggestion) {
	if len(list) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("No suggestions found."))
		return
	}
	for _, s := range list {
		if s.ProjectID != "" {
			fmt.Fprintf(w, "%s\t%s\n", s.Text, s.ProjectID)
		} else {
			fmt.Fprintln(w, s.Text)
		}
	}
}

func markdownRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()

	if cached, ok := renderers[width]; ok {
		return cached
	}
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.ASCIIStyleConfig),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}
