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

const projectColumns = `id, name, description, created_at, archived, archived_at`

// projectRow mirrors the projects table.
type projectRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	CreatedAt   string         `db:"created_at"`
	Archived    int            `db:"archived"`
	ArchivedAt  sql.NullString `db:"archived_at"`
}

func (r projectRow) toModel() (model.Project, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return model.Project{}, err
	}
	archivedAt, err := parseNullTime(r.ArchivedAt)
	if err != nil {
		return model.Project{}, err
	}
	return model.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   createdAt,
		Archived:    r.Archived != 0,
		ArchivedAt:  archivedAt,
	}, nil
}

// AddProject inserts a new project with a generated id and createdAt.
func (s *SQLiteStore) AddProject(
	ctx context.Context,
	name, description string,
) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("project name must not be empty")
	}

	project := model.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}

	err := s.write(ctx, "adding project", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, created_at, archived, archived_at)
			VALUES (?, ?, ?, ?, 0, NULL)`,
			project.ID, project.Name, project.Description, formatTime(project.CreatedAt),
		)
		if err != nil {
			return unavailable("creating project", err)
		}
		return nil
	}, kindProjects)
	if err != nil {
		return nil, err
	}

	s.log.Debug("project added", "id", project.ID, "name", project.Name)
	return &project, nil
}

// GetProject retrieves a single project by id.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return getProject(ctx, s.db, id)
}

// ListProjects returns projects in the order defined by the filter status.
func (s *SQLiteStore) ListProjects(
	ctx context.Context,
	filter ProjectFilter,
) ([]model.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	switch filter.Status {
	case ProjectsArchived:
		query += " WHERE archived = 1 ORDER BY archived_at DESC, rowid DESC"
	case ProjectsAll:
		query += " ORDER BY archived ASC," +
			" CASE WHEN archived = 1 THEN archived_at ELSE created_at END DESC," +
			" rowid DESC"
	default:
		query += " WHERE archived = 0 ORDER BY created_at DESC, rowid DESC"
	}

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, unavailable("querying projects", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, unavailable("scanning project row", err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// ArchiveProject hides a project from the active list. Its todos and notes
// are kept. Archiving an archived project keeps the original archivedAt.
func (s *SQLiteStore) ArchiveProject(ctx context.Context, id string) (*model.Project, error) {
	return s.setArchived(ctx, id, true)
}

// RestoreProject returns an archived project to the active list and clears
// archivedAt.
func (s *SQLiteStore) RestoreProject(ctx context.Context, id string) (*model.Project, error) {
	return s.setArchived(ctx, id, false)
}

func (s *SQLiteStore) setArchived(
	ctx context.Context,
	id string,
	archived bool,
) (*model.Project, error) {
	op := "restoring project"
	query := "UPDATE projects SET archived = 0, archived_at = NULL WHERE id = ?"
	args := []any{id}
	if archived {
		op = "archiving project"
		query = "UPDATE projects SET archived = 1," +
			" archived_at = COALESCE(archived_at, ?) WHERE id = ?"
		args = []any{formatTime(s.now()), id}
	}

	var project *model.Project
	err := s.write(ctx, op, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return unavailable(fmt.Sprintf("%s %s", op, id), err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("project", id)
		}
		project, err = getProject(ctx, tx, id)
		return err
	}, kindProjects)
	if err != nil {
		return nil, err
	}

	s.log.Debug(op, "id", id)
	return project, nil
}

// DeleteProject removes a project together with its todos and notes.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	var todos, notes int64
	err := s.write(ctx, "deleting project", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE project_id = ?", id)
		if err != nil {
			return unavailable("deleting todos of project "+id, err)
		}
		todos, _ = result.RowsAffected()

		result, err = tx.ExecContext(ctx, "DELETE FROM notes WHERE project_id = ?", id)
		if err != nil {
			return unavailable("deleting notes of project "+id, err)
		}
		notes, _ = result.RowsAffected()

		result, err = tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
		if err != nil {
			return unavailable("deleting project "+id, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return notFound("project", id)
		}
		return nil
	}, kindProjects, kindTodos, kindNotes)
	if err != nil {
		return err
	}

	s.log.Info("project deleted", "id", id, "todos", todos, "notes", notes)
	return nil
}

// getProject loads a project through db or an open transaction.
func getProject(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Project, error) {
	var row projectRow
	err := sqlx.GetContext(ctx, q, &row,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, unavailable("getting project "+id, err)
	}

	project, err := row.toModel()
	if err != nil {
		return nil, unavailable("scanning project row", err)
	}
	return &project, nil
}
