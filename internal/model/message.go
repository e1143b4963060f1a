package model

import "time"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Suggestion is a candidate todo parsed from assistant output. It is only
// persisted embedded in its Message.
type Suggestion struct {
	Text      string `json:"text"`
	ProjectID string `json:"projectId,omitempty"`
	Added     bool   `json:"added"`
}

// Message is one turn of the assistant conversation.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Suggestions []Suggestion `json:"suggestedTodos,omitempty"`

	// Failed marks a locally generated failure record that was never
	// persisted.
	Failed bool `json:"failed,omitempty"`
}
