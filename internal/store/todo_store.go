package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/smarttodo/internal/model"
)

const todoColumns = `id, project_id, text, completed, completed_at, created_at, source, priority, position`

// todoRow mirrors the todos table.
type todoRow struct {
	ID          string         `db:"id"`
	ProjectID   string         `db:"project_id"`
	Text        string         `db:"text"`
	Completed   int            `db:"completed"`
	CompletedAt sql.NullString `db:"completed_at"`
	CreatedAt   string         `db:"created_at"`
	Source      string         `db:"source"`
	Priority    string         `db:"priority"`
	Position    sql.NullInt64  `db:"position"`
}

func (r todoRow) toModel() (model.Todo, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return model.Todo{}, err
	}
	completedAt, err := parseNullTime(r.CompletedAt)
	if err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Text:        r.Text,
		Completed:   r.Completed != 0,
		CompletedAt: completedAt,
		CreatedAt:   createdAt,
		Source:      model.Source(r.Source),
		Priority:    model.Priority(r.Priority),
	}
	if !todo.Priority.Valid() {
		todo.Priority = model.PriorityMedium
	}
	if r.Position.Valid {
		pos := int(r.Position.Int64)
		todo.Position = &pos
	}
	return todo, nil
}

// AddTodo inserts a new pending todo with medium priority into an existing
// project.
func (s *SQLiteStore) AddTodo(
	ctx context.Context,
	projectID, text string,
	source model.Source,
) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidf("todo text must not be empty")
	}
	if source == "" {
		source = model.SourceManual
	}
	if !source.Valid() {
		return nil, invalidf("unknown todo source %q", source)
	}

	todo := model.Todo{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Text:      text,
		CreatedAt: s.now(),
		Source:    source,
		Priority:  model.PriorityMedium,
	}

	err := s.write(ctx, "adding todo", func(tx *sqlx.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO todos (
				id, project_id, text, completed, completed_at,
				created_at, source, priority, position
			) VALUES (?, ?, ?, 0, NULL, ?, ?, ?, NULL)`,
			todo.ID, todo.ProjectID, todo.Text,
			formatTime(todo.CreatedAt), string(todo.Source), string(todo.Priority),
		)
		if err != nil {
			return unavailable("creating todo", err)
		}
		return nil
	}, kindProjects, kindTodos)
	if err != nil {
		return nil, err
	}

	s.log.Debug("todo added", "id", todo.ID, "project", projectID, "source", source)
	return &todo, nil
}

// GetTodo retrieves a single todo by id.
func (s *SQLiteStore) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	return getTodo(ctx, s.db, id)
}

// ListTodos returns todos by createdAt descending.
func (s *SQLiteStore) ListTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos"
	var args []any
	if filter.ProjectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, filter.ProjectID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable("querying todos", err)
	}

	todos := make([]model.Todo, 0, len(rows))
	for _, r := range rows {
		t, err := r.toModel()
		if err != nil {
			return nil, unavailable("scanning todo row", err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// ToggleTodo sets the completion state. Completing stamps completedAt with
// the current time; reopening clears it.
func (s *SQLiteStore) ToggleTodo(
	ctx context.Context,
	id string,
	completed bool,
) (*model.Todo, error) {
	var completedAt sql.NullString
	if completed {
		completedAt = sql.NullString{String: formatTime(s.now()), Valid: true}
	}
	return s.updateTodo(ctx, "toggling todo", id,
		"UPDATE todos SET completed = ?, completed_at = ? WHERE id = ?",
		boolToInt(completed), completedAt, id,
	)
}

// UpdateTodoPriority sets the priority of a todo.
func (s *SQLiteStore) UpdateTodoPriority(
	ctx context.Context,
	id string,
	priority model.Priority,
) (*model.Todo, error) {
	if !priority.Valid() {
		return nil, invalidf("unknown priority %q", priority)
	}
	return s.updateTodo(ctx, "updating todo priority", id,
		"UPDATE todos SET priority = ? WHERE id = ?", string(priority), id,
	)
}

// CyclePriority rotates a todo's priority high, medium, low, high.
func (s *SQLiteStore) CyclePriority(ctx context.Context, id string) (*model.Todo, error) {
	var todo *model.Todo
	err := s.write(ctx, "cycling todo priority", func(tx *sqlx.Tx) error {
		current, err := getTodo(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE todos SET priority = ? WHERE id = ?",
			string(current.Priority.Next()), id); err != nil {
			return unavailable("cycling priority of todo "+id, err)
		}
		todo, err = getTodo(ctx, tx, id)
		return err
	}, kindTodos)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// ReorderTodos stores ids as the manual order of the project's todos,
// assigning positions 1..n. Every id must belong to the project.
func (s *SQLiteStore) ReorderTodos(ctx context.Context, projectID string, ids []string) error {
	err := s.write(ctx, "reordering todos", func(tx *sqlx.Tx) error {
		if _, err := getProject(ctx, tx, projectID); err != nil {
			return err
		}
		stmt, err := tx.PreparexContext(ctx,
			"UPDATE todos SET position = ? WHERE id = ? AND project_id = ?")
		if err != nil {
			return unavailable("preparing reorder statement", err)
		}
		defer stmt.Close()

		for i, id := range ids {
			result, err := stmt.ExecContext(ctx, i+1, id, projectID)
			if err != nil {
				return unavailable("reordering todo "+id, err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return notFound("todo", id)
			}
		}
		return nil
	}, kindProjects, kindTodos)
	if err != nil {
		return err
	}

	s.log.Debug("todos reordered", "project", projectID, "count", len(ids))
	return nil
}

// DeleteTodo removes a todo by id.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id string) error {
	return s.write(ctx, "deleting todo", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
		if err != nil {
			return unavailable("deleting todo "+id, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("todo", id)
		}
		return nil
	}, kindTodos)
}

// updateTodo applies a single-row update and reselects the todo inside the
// same transaction.
func (s *SQLiteStore) updateTodo(
	ctx context.Context,
	op, id, query string,
	args ...any,
) (*model.Todo, error) {
	var todo *model.Todo
	err := s.write(ctx, op, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return unavailable(fmt.Sprintf("%s %s", op, id), err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("todo", id)
		}
		todo, err = getTodo(ctx, tx, id)
		return err
	}, kindTodos)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// getTodo loads a todo through db or an open transaction.
func getTodo(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Todo, error) {
	var row todoRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+todoColumns+" FROM todos WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("todo", id)
	}
	if err != nil {
		return nil, unavailable("getting todo "+id, err)
	}

	todo, err := row.toModel()
	if err != nil {
		return nil, unavailable("scanning todo row", err)
	}
	return &todo, nil
}
