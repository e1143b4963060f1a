// Package main implements the smarttodo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var (
	configPath string
	dbPath     string
	debug      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "smarttodo",
	Short:         "Local-first projects, todos, and notes with an assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/smarttodo/config.yaml, or $SMARTTODO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides store.path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to stderr")

	rootCmd.AddCommand(projectCmd, todoCmd, boardCmd, noteCmd, chatCmd, historyCmd, suggestCmd, acceptCmd, settingsCmd, serveCmd)
}

// addJSONFlag registers --json on a listing command.
func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
}
