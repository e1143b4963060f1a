package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/keys"
	"github.com/nhle/smarttodo/internal/ui/board"
)

var boardCmd = &cobra.Command{
	Use:   "board PROJECT_ID",
	Short: "Open an interactive board to reorder and complete todos",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		p, err := a.svc.GetProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		interval := time.Duration(a.cfg.Sync.RefreshIntervalSec) * time.Second
		m := board.New(*p, a.svc, keys.DefaultKeyMap(), interval)

		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	}),
}
