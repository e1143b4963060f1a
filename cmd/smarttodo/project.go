package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/render"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var (
	projectListArchived bool
	projectListAll      bool
	projectDescription  string
	projectDeleteYes    bool
)

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var (
			projects []model.Project
			err      error
		)
		switch {
		case projectListArchived:
			projects, err = a.svc.ListArchivedProjects(cmd.Context())
		default:
			projects, err = a.svc.ListProjects(cmd.Context(), !projectListAll)
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return render.JSON(cmd.OutOrStdout(), projects)
		}
		render.Projects(cmd.OutOrStdout(), projects)
		return nil
	}),
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		p, err := a.svc.AddProject(cmd.Context(), args[0], projectDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added project %s (%s)\n", p.Name, p.ID)
		return nil
	}),
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive ID",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		p, err := a.svc.ArchiveProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Archived project %s\n", p.Name)
		return nil
	}),
}

var projectRestoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Restore an archived project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		p, err := a.svc.RestoreProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored project %s\n", p.Name)
		return nil
	}),
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project with its todos and notes",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		p, err := a.svc.GetProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !projectDeleteYes {
			ok, err := confirm(fmt.Sprintf("Delete %q and all of its todos and notes?", p.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}
		if err := a.svc.DeleteProject(cmd.Context(), p.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.Name)
		return nil
	}),
}

var errNeedsConfirmation = errors.New("refusing to delete without confirmation; pass --yes")

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses rather than guessing.
func confirm(title string) (bool, error) {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false, errNeedsConfirmation
	}
	var ok bool
	if err := huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Keep").Value(&ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func init() {
	projectListCmd.Flags().BoolVar(&projectListArchived, "archived", false, "list archived projects only")
	projectListCmd.Flags().BoolVar(&projectListAll, "all", false, "include archived projects")
	addJSONFlag(projectListCmd)
	projectAddCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")
	projectDeleteCmd.Flags().BoolVarP(&projectDeleteYes, "yes", "y", false, "skip the confirmation prompt")

	projectCmd.AddCommand(projectListCmd, projectAddCmd, projectArchiveCmd, projectRestoreCmd, projectDeleteCmd)
}
