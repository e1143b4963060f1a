package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/render"
)

var errReplyFailed = errors.New("assistant reply failed")

var chatCmd = &cobra.Command{
	Use:   "chat MESSAGE...",
	Short: "Send a message to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		reply, err := a.svc.SendMessage(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		render.Message(cmd.OutOrStdout(), *reply, replyWidth)
		if reply.Failed {
			return errReplyFailed
		}
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation, oldest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		msgs, err := a.svc.ListMessages(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return render.JSON(out, msgs)
		}
		if len(msgs) == 0 {
			fmt.Fprintln(out, "No messages.")
			return nil
		}
		for _, m := range msgs {
			render.Message(out, m, replyWidth)
		}
		return nil
	}),
}

var acceptProject string

var acceptCmd = &cobra.Command{
	Use:   "accept MESSAGE_ID INDEX",
	Short: "Add a suggested todo from an assistant message",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid INDEX %q: %w", args[1], err)
		}
		t, _, err := a.svc.AcceptSuggestion(cmd.Context(), args[0], index, acceptProject)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s (%s)\n", t.Text, t.ID)
		return nil
	}),
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Extract suggested todos from text on stdin",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		list, err := a.svc.ExtractSuggestions(cmd.Context(), string(text))
		if err != nil {
			return err
		}
		if jsonOutput {
			return render.JSON(cmd.OutOrStdout(), list)
		}
		render.Suggestions(cmd.OutOrStdout(), list)
		return nil
	}),
}

func init() {
	addJSONFlag(historyCmd)
	addJSONFlag(suggestCmd)
	acceptCmd.Flags().StringVarP(&acceptProject, "project", "p", "", "project id, overriding the matched one")
}
