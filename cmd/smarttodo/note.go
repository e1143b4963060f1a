package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/render"
)

var noteCmd = &cobra.Command{
	Use:     "note",
	Aliases: []string{"notes"},
	Short:   "Manage project notes",
}

var noteListProject string

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		notes, err := a.svc.ListNotes(cmd.Context(), noteListProject)
		if err != nil {
			return err
		}
		if jsonOutput {
			return render.JSON(cmd.OutOrStdout(), notes)
		}
		render.Notes(cmd.OutOrStdout(), notes)
		return nil
	}),
}

var noteAddCmd = &cobra.Command{
	Use:   "add PROJECT_ID CONTENT...",
	Short: "Add a note to a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		n, err := a.svc.AddNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added note (%s)\n", n.ID)
		return nil
	}),
}

func init() {
	noteListCmd.Flags().StringVarP(&noteListProject, "project", "p", "", "project id")
	addJSONFlag(noteListCmd)

	noteCmd.AddCommand(noteListCmd, noteAddCmd)
}
