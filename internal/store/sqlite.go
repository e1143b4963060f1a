package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/smarttodo/internal/logger"
)

// timeLayout is a fixed-width UTC ISO-8601 layout, so lexical order of
// stored timestamps equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// busyTimeoutMS bounds how long a statement waits for a competing writer.
const busyTimeoutMS = 5000

// kind identifies an entity table for write serialization. Locks are
// always taken in ascending kind order.
type kind int

const (
	kindProjects kind = iota
	kindTodos
	kindNotes
	kindMessages
	kindSettings
	numKinds
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db    *sqlx.DB
	log   *log.Logger
	locks [numKinds]sync.Mutex
	now   func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode and foreign keys, and runs any pending schema
// migrations. A nil logger discards output.
func NewSQLiteStore(dbPath string, l *log.Logger) (*SQLiteStore, error) {
	if l == nil {
		l = logger.Discard()
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable("opening sqlite db", err)
	}

	// A single connection keeps ":memory:" databases shared and makes
	// readers queue behind an in-flight write transaction.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMS),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, unavailable(fmt.Sprintf("applying %q", p), err)
		}
	}

	s := &SQLiteStore{
		db:  db,
		log: l.WithPrefix("store"),
		now: func() time.Time { return time.Now().UTC() },
	}
	if err := s.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// lock acquires the write locks for the given kinds in a fixed order and
// returns a function releasing them.
func (s *SQLiteStore) lock(kinds ...kind) func() {
	sorted := append([]kind(nil), kinds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, k := range sorted {
		s.locks[k].Lock()
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			s.locks[sorted[i]].Unlock()
		}
	}
}

// write runs fn inside one transaction while holding the write locks of
// the given kinds. Errors returned by fn are passed through unchanged;
// begin and commit failures become ErrStoreUnavailable.
func (s *SQLiteStore) write(
	ctx context.Context,
	op string,
	fn func(tx *sqlx.Tx) error,
	kinds ...kind,
) error {
	unlock := s.lock(kinds...)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.log.Error("begin transaction failed", "op", op, "err", err)
		return unavailable(op+": beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("commit failed", "op", op, "err", err)
		return unavailable(op+": committing", err)
	}
	return nil
}

// formatTime renders t in the stored timestamp layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp, also accepting any RFC 3339 value.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// parseNullTime parses an optional stored timestamp.
func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
