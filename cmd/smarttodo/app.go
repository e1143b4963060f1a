package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/ai"
	"github.com/nhle/smarttodo/internal/credential"
	"github.com/nhle/smarttodo/internal/logger"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/service"
	"github.com/nhle/smarttodo/internal/store"
)

// replyWidth is the word-wrap width of rendered assistant replies.
const replyWidth = 80

// app bundles the process-wide handles built from configuration. One is
// opened per command invocation and closed when it returns.
type app struct {
	cfg   *model.AppConfig
	log   *log.Logger
	store *store.SQLiteStore
	svc   *service.Service
}

func openApp() (*app, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("SMARTTODO_CONFIG")
	}
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	l, err := logger.New(logger.Config{Level: level, Dir: cfg.Log.Dir, Stderr: debug})
	if err != nil {
		return nil, err
	}

	if err := ensureDir(cfg.Store.Path); err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteStore(cfg.Store.Path, l)
	if err != nil {
		return nil, err
	}

	keys := credential.NewResolver(s, credential.Open)
	gen := ai.New(ai.Config{
		APIKey:    keys.ConfiguredKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
		BaseURL:   cfg.AI.BaseURL,
	})
	svc := service.New(s, service.Options{
		Generator:       gen,
		GenerateTimeout: time.Duration(cfg.AI.TimeoutSec) * time.Second,
		Logger:          l,
	})

	return &app{cfg: cfg, log: l, store: s, svc: svc}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the app for the duration of fn.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return nil
}
