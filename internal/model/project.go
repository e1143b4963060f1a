package model

import "time"

// Project is a top-level container owning a set of todos and notes.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	Archived    bool       `json:"archived"`
	ArchivedAt  *time.Time `json:"archivedAt"`
}

// Ref returns the id/name pair used for suggestion matching.
func (p Project) Ref() ProjectRef {
	return ProjectRef{ID: p.ID, Name: p.Name}
}

// ProjectRef is the minimal view of a project known to the extractor.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
