package model

import "time"

// Note is immutable free-form text attached to a project. Notes are
// append-only and feed the assistant's context.
type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
