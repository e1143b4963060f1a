// Package service is the request/response boundary between front-ends and
// the store. Every operation takes a context, performs its store calls
// without retries, and keeps the session board in step with todo writes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nhle/smarttodo/internal/ai"
	"github.com/nhle/smarttodo/internal/logger"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/store"
)

const defaultGenerateTimeout = 60 * time.Second

// Options configures a Service.
type Options struct {
	// Generator produces assistant replies. Nil makes every chat turn fail
	// with ai.ErrUpstream.
	Generator ai.Generator
	// GenerateTimeout bounds one generation call. Zero means 60s.
	GenerateTimeout time.Duration
	Logger          *log.Logger
}

// Service implements the sync boundary operations on top of a Store.
type Service struct {
	store   store.Store
	gen     ai.Generator
	timeout time.Duration
	board   *reconcile.Board
	log     *log.Logger

	// locks serializes order-changing writes per project.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
	// acceptMu serializes suggestion acceptance.
	acceptMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// New creates a Service around an open store.
func New(s store.Store, opts Options) *Service {
	l := opts.Logger
	if l == nil {
		l = logger.Discard()
	}
	timeout := opts.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &Service{
		store:   s,
		gen:     opts.Generator,
		timeout: timeout,
		board:   reconcile.NewBoard(),
		locks:   make(map[string]*sync.Mutex),
		log:     l.WithPrefix("service"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Board returns the session board shared with the background refresher.
func (s *Service) Board() *reconcile.Board {
	return s.board
}

// === Projects ===

// ListProjects returns active projects, or all projects when activeOnly is
// false.
func (s *Service) ListProjects(ctx context.Context, activeOnly bool) ([]model.Project, error) {
	status := store.ProjectsAll
	if activeOnly {
		status = store.ProjectsActive
	}
	return s.store.ListProjects(ctx, store.ProjectFilter{Status: status})
}

// ListArchivedProjects returns archived projects, most recently archived
// first.
func (s *Service) ListArchivedProjects(ctx context.Context) ([]model.Project, error) {
	return s.store.ListProjects(ctx, store.ProjectFilter{Status: store.ProjectsArchived})
}

func (s *Service) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *Service) AddProject(ctx context.Context, name, description string) (*model.Project, error) {
	p, err := s.store.AddProject(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.log.Info("project added", "id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) ArchiveProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.store.ArchiveProject(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("project archived", "id", id)
	return p, nil
}

func (s *Service) RestoreProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.store.RestoreProject(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("project restored", "id", id)
	return p, nil
}

// DeleteProject removes a project with its todos and notes.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.board.Forget(id)
	s.log.Info("project deleted", "id", id)
	return nil
}

// === Todos ===

// ListTodos returns todos newest first. An empty projectID lists all.
func (s *Service) ListTodos(ctx context.Context, projectID string) ([]model.Todo, error) {
	return s.store.ListTodos(ctx, store.TodoFilter{ProjectID: projectID})
}

func (s *Service) AddTodo(ctx context.Context, projectID, text string, source model.Source) (*model.Todo, error) {
	t, err := s.store.AddTodo(ctx, projectID, text, source)
	if err != nil {
		return nil, err
	}
	s.log.Debug("todo added", "id", t.ID, "project", projectID, "source", t.Source)
	s.refreshProject(ctx, t.ProjectID)
	return t, nil
}

// ToggleTodo marks a todo completed or pending and stores the resulting
// pending order, so a reopened todo keeps the slot the board gives it.
func (s *Service) ToggleTodo(ctx context.Context, id string, completed bool) (*model.Todo, error) {
	cur, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.lockProject(cur.ProjectID)()

	t, err := s.store.ToggleTodo(ctx, id, completed)
	if err != nil {
		return nil, err
	}
	s.log.Debug("todo toggled", "id", id, "completed", completed)
	s.persistOrder(ctx, t.ProjectID)
	return t, nil
}

func (s *Service) UpdateTodoPriority(ctx context.Context, id string, priority model.Priority) (*model.Todo, error) {
	t, err := s.store.UpdateTodoPriority(ctx, id, priority)
	if err != nil {
		return nil, err
	}
	s.refreshProject(ctx, t.ProjectID)
	return t, nil
}

// CyclePriority rotates a todo's priority high -> medium -> low -> high.
func (s *Service) CyclePriority(ctx context.Context, id string) (*model.Todo, error) {
	t, err := s.store.CyclePriority(ctx, id)
	if err != nil {
		return nil, err
	}
	s.refreshProject(ctx, t.ProjectID)
	return t, nil
}

func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	t, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return err
	}
	s.log.Debug("todo deleted", "id", id)
	s.refreshProject(ctx, t.ProjectID)
	return nil
}

// === Notes ===

// ListNotes returns notes newest first. An empty projectID lists all.
func (s *Service) ListNotes(ctx context.Context, projectID string) ([]model.Note, error) {
	return s.store.ListNotes(ctx, store.NoteFilter{ProjectID: projectID})
}

func (s *Service) AddNote(ctx context.Context, projectID, content string) (*model.Note, error) {
	return s.store.AddNote(ctx, projectID, content)
}

// === Messages ===

func (s *Service) ListMessages(ctx context.Context) ([]model.Message, error) {
	return s.store.ListMessages(ctx)
}

// SaveMessage upserts a message by id.
func (s *Service) SaveMessage(ctx context.Context, msg model.Message) error {
	if msg.Failed {
		return fmt.Errorf("%w: failure records are not persisted", store.ErrValidation)
	}
	return s.store.SaveMessage(ctx, msg)
}

// === Settings ===

// GetSettings returns the saved settings, or nil when none were saved.
func (s *Service) GetSettings(ctx context.Context) (*model.Settings, error) {
	return s.store.GetSettings(ctx)
}

func (s *Service) SaveSettings(ctx context.Context, settings model.Settings) error {
	return s.store.SaveSettings(ctx, settings)
}
