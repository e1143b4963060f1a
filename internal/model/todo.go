package model

import "time"

// Source identifies how a todo was created.
type Source string

const (
	SourceManual Source = "manual"
	SourceAI     Source = "ai"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceManual || s == SourceAI
}

// Priority is the user-assigned urgency of a todo.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Next returns the priority that follows p in the high, medium, low rotation.
// Unknown values rotate to high.
func (p Priority) Next() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

// Todo is an actionable item belonging to exactly one project.
type Todo struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	Source      Source     `json:"source"`
	Priority    Priority   `json:"priority"`

	// Position is the durable manual order within the project's pending
	// todos. Nil until the user first reorders the project.
	Position *int `json:"position,omitempty"`
}
