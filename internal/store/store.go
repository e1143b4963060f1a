package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/smarttodo/internal/model"
)

var (
	// ErrValidation is returned when an add or update carries an empty or
	// invalid field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a mutation or delete targets an id that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps every I/O, driver, or lock failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProjectStatus selects which projects a listing returns.
type ProjectStatus int

const (
	// ProjectsActive lists non-archived projects by createdAt descending.
	ProjectsActive ProjectStatus = iota
	// ProjectsArchived lists archived projects by archivedAt descending.
	ProjectsArchived
	// ProjectsAll lists active projects followed by archived ones.
	ProjectsAll
)

// ProjectFilter controls project queries.
type ProjectFilter struct {
	Status ProjectStatus
}

// TodoFilter controls todo queries. An empty ProjectID matches all projects.
type TodoFilter struct {
	ProjectID string
}

// NoteFilter controls note queries. An empty ProjectID matches all projects.
type NoteFilter struct {
	ProjectID string
}

// Store defines the persistence interface for projects, todos, notes,
// conversation messages, and settings.
type Store interface {
	// === Projects ===

	ListProjects(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	AddProject(ctx context.Context, name, description string) (*model.Project, error)
	ArchiveProject(ctx context.Context, id string) (*model.Project, error)
	RestoreProject(ctx context.Context, id string) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// === Todos ===

	ListTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error)
	GetTodo(ctx context.Context, id string) (*model.Todo, error)
	AddTodo(ctx context.Context, projectID, text string, source model.Source) (*model.Todo, error)
	ToggleTodo(ctx context.Context, id string, completed bool) (*model.Todo, error)
	UpdateTodoPriority(ctx context.Context, id string, priority model.Priority) (*model.Todo, error)
	CyclePriority(ctx context.Context, id string) (*model.Todo, error)
	ReorderTodos(ctx context.Context, projectID string, ids []string) error
	DeleteTodo(ctx context.Context, id string) error

	// === Notes ===

	ListNotes(ctx context.Context, filter NoteFilter) ([]model.Note, error)
	AddNote(ctx context.Context, projectID, content string) (*model.Note, error)

	// === Messages ===

	ListMessages(ctx context.Context) ([]model.Message, error)
	GetMessage(ctx context.Context, id string) (*model.Message, error)
	SaveMessage(ctx context.Context, msg model.Message) error

	// === Settings ===

	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error

	Close() error
}

// invalidf builds an ErrValidation error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound builds an ErrNotFound error for the given entity kind.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// unavailable marks a driver failure as ErrStoreUnavailable, keeping the
// cause in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
