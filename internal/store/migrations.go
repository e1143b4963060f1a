package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migration holds a single schema migration with its target version.
// A step either runs plain SQL or, for additive column changes, adds a
// column when the table does not have it yet.
type migration struct {
	version int
	name    string
	sql     string
	columns []column
}

// column describes a column added by an additive migration step.
type column struct {
	table string
	name  string
	decl  string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		sql: `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	text         TEXT NOT NULL,
	completed    INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at TEXT,
	created_at   TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'ai'))
);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	role        TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
	content     TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	suggestions TEXT
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_todos_project_id ON todos(project_id);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);
CREATE INDEX IF NOT EXISTS idx_notes_project_id ON notes(project_id);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);
`,
	},
	{
		version: 2,
		name:    "project archiving",
		columns: []column{
			{table: "projects", name: "archived", decl: "INTEGER NOT NULL DEFAULT 0"},
			{table: "projects", name: "archived_at", decl: "TEXT"},
		},
	},
	{
		version: 3,
		name:    "todo priority",
		columns: []column{
			{table: "todos", name: "priority", decl: "TEXT NOT NULL DEFAULT 'medium'"},
		},
	},
	{
		version: 4,
		name:    "manual todo order",
		columns: []column{
			{table: "todos", name: "position", decl: "INTEGER"},
		},
	},
}

// schemaVersion returns the highest applied migration version, creating
// the schema_version table on first use.
func (s *SQLiteStore) schemaVersion(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return 0, unavailable("creating schema_version table", err)
	}

	var version int
	if err := s.db.GetContext(ctx, &version,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, unavailable("reading schema version", err)
	}
	return version, nil
}

// runMigrations checks the current schema version once and applies any
// outstanding migrations in order, each in its own transaction together
// with its version row.
func (s *SQLiteStore) runMigrations(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		s.log.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

// applyMigration runs one migration step and records its version.
func (s *SQLiteStore) applyMigration(ctx context.Context, m migration) error {
	op := fmt.Sprintf("applying migration v%d", m.version)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(op, err)
	}
	defer tx.Rollback()

	if m.sql != "" {
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return unavailable(op, err)
		}
	}

	for _, c := range m.columns {
		exists, err := columnExists(ctx, tx, c.table, c.name)
		if err != nil {
			return unavailable(op, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.decl)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return unavailable(op, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		m.version, formatTime(s.now())); err != nil {
		return unavailable(op+": recording version", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable(op+": committing", err)
	}
	return nil
}

// columnExists reports whether table already has the named column. A
// step whose version marker was lost can then be re-applied safely.
func columnExists(ctx context.Context, tx *sqlx.Tx, table, name string) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, name)
	if err != nil {
		return false, fmt.Errorf("inspecting %s.%s: %w", table, name, err)
	}
	return count > 0, nil
}
