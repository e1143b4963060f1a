package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smarttodo/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorPurple = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// HeaderStyle is used for section headers such as a project name above
// its board.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// IDStyle renders entity ids next to list items.
var IDStyle = lipgloss.NewStyle().Foreground(ColorGray)

// DoneStyle renders completed todos.
var DoneStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// ArchivedStyle dims archived projects.
var ArchivedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// HelpStyle is used for hints and empty-list text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SelectedStyle marks the board row under the cursor.
var SelectedStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// ErrorStyle renders assistant failure records.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// RoleStyle returns the label style for a conversation role.
func RoleStyle(role model.Role) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if role == model.RoleAssistant {
		return base.Foreground(ColorPurple)
	}
	return base.Foreground(ColorBlue)
}

// PriorityStyle returns the color of a todo's priority dot.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// SourceLabelStyle returns the style of a todo's provenance label.
func SourceLabelStyle(s model.Source) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)
	if s == model.SourceAI {
		return base.Foreground(ColorPurple)
	}
	return base.Foreground(ColorGray)
}
