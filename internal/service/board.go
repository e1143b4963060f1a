package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/store"
)

// ProjectBoard merges the project's current todos into the session board
// and returns the resulting snapshot.
func (s *Service) ProjectBoard(ctx context.Context, projectID string) (reconcile.Snapshot, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return reconcile.Snapshot{}, err
	}
	todos, err := s.store.ListTodos(ctx, store.TodoFilter{ProjectID: projectID})
	if err != nil {
		return reconcile.Snapshot{}, err
	}
	return s.board.RefreshProject(projectID, todos), nil
}

// MoveTodo moves a pending todo within its project's manual order and
// persists the new order.
func (s *Service) MoveTodo(ctx context.Context, projectID string, from, to int) (reconcile.Snapshot, error) {
	defer s.lockProject(projectID)()

	if _, err := s.ProjectBoard(ctx, projectID); err != nil {
		return reconcile.Snapshot{}, err
	}

	ids, err := s.board.Move(projectID, from, to)
	if errors.Is(err, reconcile.ErrInvalidMove) {
		return reconcile.Snapshot{}, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	if err != nil {
		return reconcile.Snapshot{}, err
	}

	if err := s.store.ReorderTodos(ctx, projectID, ids); err != nil {
		// The board may hold a todo deleted since it was read.
		s.refreshProject(ctx, projectID)
		return reconcile.Snapshot{}, err
	}
	s.log.Debug("todo moved", "project", projectID, "from", from, "to", to)

	snap, _ := s.board.Snapshot(projectID)
	return snap, nil
}

// refreshProject re-reads a project's todos into the board. Failures are
// logged; the background refresher catches up later.
func (s *Service) refreshProject(ctx context.Context, projectID string) {
	todos, err := s.store.ListTodos(ctx, store.TodoFilter{ProjectID: projectID})
	if err != nil {
		s.log.Warn("board refresh failed", "project", projectID, "err", err)
		return
	}
	s.board.RefreshProject(projectID, todos)
}

// persistOrder refreshes the project's board and stores its pending order.
// Failures are logged; the write that prompted it already succeeded.
func (s *Service) persistOrder(ctx context.Context, projectID string) {
	todos, err := s.store.ListTodos(ctx, store.TodoFilter{ProjectID: projectID})
	if err != nil {
		s.log.Warn("board refresh failed", "project", projectID, "err", err)
		return
	}
	snap := s.board.RefreshProject(projectID, todos)
	if err := s.store.ReorderTodos(ctx, projectID, reconcile.IDs(snap.Pending())); err != nil {
		s.log.Warn("persisting order failed", "project", projectID, "err", err)
	}
}

// lockProject locks the order of one project and returns the unlock func.
func (s *Service) lockProject(projectID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[projectID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[projectID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
