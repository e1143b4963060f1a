package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nhle/smarttodo/internal/ai"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/store"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type moveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

type todoRequest struct {
	ProjectID string       `json:"projectId"`
	Text      string       `json:"text"`
	Source    model.Source `json:"source"`
}

type toggleRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type priorityRequest struct {
	Priority model.Priority `json:"priority"`
}

type noteRequest struct {
	ProjectID string `json:"projectId"`
	Content   string `json:"content"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type acceptRequest struct {
	ProjectID string `json:"projectId"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type boardResponse struct {
	ProjectID string       `json:"projectId"`
	Pending   []model.Todo `json:"pending"`
	Completed []model.Todo `json:"completed"`
}

type acceptResponse struct {
	Todo    *model.Todo    `json:"todo"`
	Message *model.Message `json:"message"`
}

// === Projects ===

func (s *Server) handleListProjects(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		projects []model.Project
		err      error
	)
	switch {
	case c.Query("archived") == "true":
		projects, err = s.svc.ListArchivedProjects(ctx)
	case c.Query("all") == "true":
		projects, err = s.svc.ListProjects(ctx, false)
	default:
		projects, err = s.svc.ListProjects(ctx, true)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) handleAddProject(c *gin.Context) {
	var req projectRequest
	if !s.bind(c, &req) {
		return
	}
	p, err := s.svc.AddProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleArchiveProject(c *gin.Context) {
	p, err := s.svc.ArchiveProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleRestoreProject(c *gin.Context) {
	p, err := s.svc.RestoreProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleBoard(c *gin.Context) {
	projectID := c.Param("id")
	snap, err := s.svc.ProjectBoard(c.Request.Context(), projectID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board(projectID, snap))
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if !s.bind(c, &req) {
		return
	}
	projectID := c.Param("id")
	snap, err := s.svc.MoveTodo(c.Request.Context(), projectID, *req.From, *req.To)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board(projectID, snap))
}

// === Todos ===

func (s *Server) handleListTodos(c *gin.Context) {
	todos, err := s.svc.ListTodos(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (s *Server) handleAddTodo(c *gin.Context) {
	var req todoRequest
	if !s.bind(c, &req) {
		return
	}
	t, err := s.svc.AddTodo(c.Request.Context(), req.ProjectID, req.Text, req.Source)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggleTodo(c *gin.Context) {
	var req toggleRequest
	if !s.bind(c, &req) {
		return
	}
	t, err := s.svc.ToggleTodo(c.Request.Context(), c.Param("id"), *req.Completed)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdatePriority(c *gin.Context) {
	var req priorityRequest
	if !s.bind(c, &req) {
		return
	}
	t, err := s.svc.UpdateTodoPriority(c.Request.Context(), c.Param("id"), req.Priority)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleCyclePriority(c *gin.Context) {
	t, err := s.svc.CyclePriority(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	if err := s.svc.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// === Notes ===

func (s *Server) handleListNotes(c *gin.Context) {
	notes, err := s.svc.ListNotes(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (s *Server) handleAddNote(c *gin.Context) {
	var req noteRequest
	if !s.bind(c, &req) {
		return
	}
	n, err := s.svc.AddNote(c.Request.Context(), req.ProjectID, req.Content)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// === Messages ===

func (s *Server) handleListMessages(c *gin.Context) {
	messages, err := s.svc.ListMessages(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) handleSaveMessage(c *gin.Context) {
	var msg model.Message
	if !s.bind(c, &msg) {
		return
	}
	msg.ID = c.Param("id")
	if err := s.svc.SaveMessage(c.Request.Context(), msg); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if !s.bind(c, &req) {
		return
	}
	reply, err := s.svc.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleAcceptSuggestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestion index must be an integer"})
		return
	}

	var req acceptRequest
	if c.Request.ContentLength != 0 && !s.bind(c, &req) {
		return
	}

	todo, msg, err := s.svc.AcceptSuggestion(c.Request.Context(), c.Param("id"), index, req.ProjectID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acceptResponse{Todo: todo, Message: msg})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if !s.bind(c, &req) {
		return
	}
	suggestions, err := s.svc.ExtractSuggestions(c.Request.Context(), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// === Settings ===

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.svc.GetSettings(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	var settings model.Settings
	if !s.bind(c, &settings) {
		return
	}
	if err := s.svc.SaveSettings(c.Request.Context(), settings); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRefresh(c *gin.Context) {
	if s.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresher is not running"})
		return
	}
	s.refresher.Trigger()
	c.Status(http.StatusAccepted)
}

// === Helpers ===

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ai.ErrUpstream):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func board(projectID string, snap reconcile.Snapshot) boardResponse {
	return boardResponse{
		ProjectID: projectID,
		Pending:   snap.Pending(),
		Completed: snap.Completed(),
	}
}
