package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/render"
)

var todoCmd = &cobra.Command{
	Use:     "todo",
	Aliases: []string{"todos"},
	Short:   "Manage todos",
}

var (
	todoListProject string
	todoAddAI       bool
	todoToggleUndo  bool
)

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos, or show a project's board with --project",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		if todoListProject == "" || jsonOutput {
			todos, err := a.svc.ListTodos(cmd.Context(), todoListProject)
			if err != nil {
				return err
			}
			if jsonOutput {
				return render.JSON(out, todos)
			}
			render.Todos(out, todos)
			return nil
		}

		p, err := a.svc.GetProject(cmd.Context(), todoListProject)
		if err != nil {
			return err
		}
		snap, err := a.svc.ProjectBoard(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		render.Board(out, *p, snap)
		return nil
	}),
}

var todoAddCmd = &cobra.Command{
	Use:   "add PROJECT_ID TEXT...",
	Short: "Add a todo to a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		source := model.SourceManual
		if todoAddAI {
			source = model.SourceAI
		}
		t, err := a.svc.AddTodo(cmd.Context(), args[0], strings.Join(args[1:], " "), source)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s (%s)\n", t.Text, t.ID)
		return nil
	}),
}

var todoToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Mark a todo completed, or pending again with --undo",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		t, err := a.svc.ToggleTodo(cmd.Context(), args[0], !todoToggleUndo)
		if err != nil {
			return err
		}
		state := "pending"
		if t.Completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s %s\n", t.Text, state)
		return nil
	}),
}

var todoPriorityCmd = &cobra.Command{
	Use:   "priority ID [high|medium|low]",
	Short: "Set a todo's priority, or cycle it when no level is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var (
			t   *model.Todo
			err error
		)
		if len(args) == 2 {
			t, err = a.svc.UpdateTodoPriority(cmd.Context(), args[0], model.Priority(strings.ToLower(args[1])))
		} else {
			t, err = a.svc.CyclePriority(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s priority: %s\n", t.Text, t.Priority)
		return nil
	}),
}

var todoDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.svc.DeleteTodo(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted todo", args[0])
		return nil
	}),
}

var todoMoveCmd = &cobra.Command{
	Use:   "move PROJECT_ID FROM TO",
	Short: "Move a pending todo from one board position to another",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid FROM %q: %w", args[1], err)
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid TO %q: %w", args[2], err)
		}

		p, err := a.svc.GetProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		snap, err := a.svc.MoveTodo(cmd.Context(), p.ID, from, to)
		if err != nil {
			return err
		}
		render.Board(cmd.OutOrStdout(), *p, snap)
		return nil
	}),
}

func init() {
	todoListCmd.Flags().StringVarP(&todoListProject, "project", "p", "", "project id")
	addJSONFlag(todoListCmd)
	todoAddCmd.Flags().BoolVar(&todoAddAI, "ai", false, "record the todo as assistant-sourced")
	todoToggleCmd.Flags().BoolVar(&todoToggleUndo, "undo", false, "mark the todo pending")

	todoCmd.AddCommand(todoListCmd, todoAddCmd, todoToggleCmd, todoPriorityCmd, todoDeleteCmd, todoMoveCmd)
}
