// Package server exposes the service over a local HTTP/JSON API for a
// browser or desktop front-end.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/nhle/smarttodo/internal/logger"
	"github.com/nhle/smarttodo/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Trigger requests an out-of-band board refresh.
type Trigger interface {
	Trigger()
}

// Options configures a Server.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
	// Refresher, when set, is triggered by POST /api/refresh.
	Refresher Trigger
	Logger    *log.Logger
}

// Server is the smarttodo HTTP server.
type Server struct {
	svc       *service.Service
	refresher Trigger
	router    *gin.Engine
	handler   http.Handler
	log       *log.Logger
}

// New creates a server with all API routes registered.
func New(svc *service.Service, opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = logger.Discard()
	}

	router := gin.New()
	s := &Server{
		svc:       svc,
		refresher: opts.Refresher,
		router:    router,
		log:       l.WithPrefix("http"),
	}
	router.Use(gin.Recovery(), s.logRequests)

	api := router.Group("/api")
	{
		api.GET("/projects", s.handleListProjects)
		api.POST("/projects", s.handleAddProject)
		api.POST("/projects/:id/archive", s.handleArchiveProject)
		api.POST("/projects/:id/restore", s.handleRestoreProject)
		api.DELETE("/projects/:id", s.handleDeleteProject)
		api.GET("/projects/:id/board", s.handleBoard)
		api.POST("/projects/:id/board/move", s.handleMove)

		api.GET("/todos", s.handleListTodos)
		api.POST("/todos", s.handleAddTodo)
		api.POST("/todos/:id/toggle", s.handleToggleTodo)
		api.PUT("/todos/:id/priority", s.handleUpdatePriority)
		api.POST("/todos/:id/priority/cycle", s.handleCyclePriority)
		api.DELETE("/todos/:id", s.handleDeleteTodo)

		api.GET("/notes", s.handleListNotes)
		api.POST("/notes", s.handleAddNote)

		api.GET("/messages", s.handleListMessages)
		api.PUT("/messages/:id", s.handleSaveMessage)
		api.POST("/messages/:id/suggestions/:index/accept", s.handleAcceptSuggestion)
		api.POST("/chat", s.handleChat)
		api.POST("/suggestions/extract", s.handleExtract)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleSaveSettings)

		api.POST("/refresh", s.handleRefresh)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)

	return s
}

// Handler returns the CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}
