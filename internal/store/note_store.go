package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/smarttodo/internal/model"
)

// noteRow mirrors the notes table.
type noteRow struct {
	ID        string `db:"id"`
	ProjectID string `db:"project_id"`
	Content   string `db:"content"`
	CreatedAt string `db:"created_at"`
}

// AddNote appends a note to an existing project. Notes are never updated.
func (s *SQLiteStore) AddNote(
	ctx context.Context,
	projectID, content string,
) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("note content must not be empty")
	}

	note := model.Note{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Content:   content,
		CreatedAt: s.now(),
	}

	err := s.write(ctx, "adding note", func(tx *sqlx.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO notes (id, project_id, content, created_at) VALUES (?, ?, ?, ?)",
			note.ID, note.ProjectID, note.Content, formatTime(note.CreatedAt),
		)
		if err != nil {
			return unavailable("creating note", err)
		}
		return nil
	}, kindProjects, kindNotes)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns notes by createdAt descending.
func (s *SQLiteStore) ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error) {
	query := "SELECT id, project_id, content, created_at FROM notes"
	var args []any
	if filter.ProjectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, filter.ProjectID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("querying notes", err)
	}

	notes := make([]model.Note, 0, len(rows))
	for _, r := range rows {
		createdAt, err := parseTime(r.CreatedAt)
		if err != nil {
			return nil, unavailable("scanning note row", err)
		}
		notes = append(notes, model.Note{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			Content:   r.Content,
			CreatedAt: createdAt,
		})
	}
	return notes, nil
}
