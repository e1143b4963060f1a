package ai

import (
	"fmt"
	"strings"

	"github.com/nhle/smarttodo/internal/model"
)

const (
	promptNotes        = 3
	promptTodos        = 5
	promptNoteMaxRunes = 100
)

// BuildSystemPrompt describes the given projects and their progress for the
// assistant. Notes are expected newest first.
func BuildSystemPrompt(projects []model.Project, todos []model.Todo, notes []model.Note) string {
	summaries := make([]string, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, projectSummary(p, todos, notes))
	}

	status := strings.Join(summaries, "\n\n")
	if status == "" {
		status = "No projects yet. Help the user get started by suggesting they create their first project."
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful productivity assistant that helps manage projects and todos. ")
	sb.WriteString("You have access to the user's current projects and their progress.\n\n")

	sb.WriteString("CURRENT PROJECTS AND STATUS:\n")
	sb.WriteString(status)
	sb.WriteString("\n\n")

	sb.WriteString("YOUR CAPABILITIES:\n")
	sb.WriteString("1. Suggest actionable todo items based on project context and recent notes\n")
	sb.WriteString("2. Help prioritize tasks and provide productivity advice\n")
	sb.WriteString("3. Answer questions about project status and progress\n")
	sb.WriteString("4. Provide encouragement and support\n\n")

	sb.WriteString("WHEN SUGGESTING TODOS:\n")
	sb.WriteString("- Make them specific and actionable\n")
	sb.WriteString("- Consider the project context and recent progress\n")
	sb.WriteString("- Format each suggestion on a new line starting with \"• \"\n")
	sb.WriteString("- If a suggestion is for a specific project, mention the project name\n\n")

	sb.WriteString("IMPORTANT: When you suggest todos, format them clearly so the user ")
	sb.WriteString("can easily add them to their list. Be concise but helpful.")

	return sb.String()
}

func projectSummary(p model.Project, todos []model.Todo, notes []model.Note) string {
	var pending []model.Todo
	completed := 0
	for _, t := range todos {
		if t.ProjectID != p.ID {
			continue
		}
		if t.Completed {
			completed++
		} else {
			pending = append(pending, t)
		}
	}

	description := p.Description
	if description == "" {
		description = "No description"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "- **%s**: %s", p.Name, description)
	fmt.Fprintf(&sb, "\n  - Status: %d pending todos, %d completed", len(pending), completed)

	shown := 0
	for _, n := range notes {
		if n.ProjectID != p.ID {
			continue
		}
		if shown == 0 {
			sb.WriteString("\n  - Recent notes:")
		}
		fmt.Fprintf(&sb, "\n    - [%s]: %s", n.CreatedAt.Local().Format("2006-01-02"), truncate(n.Content, promptNoteMaxRunes))
		if shown++; shown == promptNotes {
			break
		}
	}

	if len(pending) > 0 {
		sb.WriteString("\n  - Current todos:")
		for i, t := range pending {
			if i == promptTodos {
				break
			}
			fmt.Fprintf(&sb, "\n    - %s", t.Text)
		}
	}

	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
