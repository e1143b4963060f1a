package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/smarttodo/internal/credential"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/render"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved settings",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		s, err := a.svc.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return render.JSON(cmd.OutOrStdout(), s)
		}
		render.Settings(cmd.OutOrStdout(), s)
		return nil
	}),
}

var (
	settingsAPIKey      string
	settingsCelebration bool
	settingsKeyring     bool
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; only the flags given are applied",
	Long: `Change settings; only the flags given are applied.

With --keyring the API key is stored in the OS keyring instead of the
database, and any key saved in settings is cleared.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		current, err := a.svc.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		next := model.Settings{}
		if current != nil {
			next = *current
		}

		flags := cmd.Flags()
		if flags.Changed("api-key") {
			key := strings.TrimSpace(settingsAPIKey)
			if settingsKeyring {
				ring, err := credential.Open()
				if err != nil {
					return err
				}
				if err := ring.Set(credential.APIKeyItem, key); err != nil {
					return err
				}
				key = ""
			}
			next.APIKey = key
		}
		if flags.Changed("celebration") {
			next.CelebrationEnabled = settingsCelebration
		}

		if err := a.svc.SaveSettings(cmd.Context(), next); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
		return nil
	}),
}

func init() {
	addJSONFlag(settingsShowCmd)
	settingsSetCmd.Flags().StringVar(&settingsAPIKey, "api-key", "", "Anthropic API key")
	settingsSetCmd.Flags().BoolVar(&settingsCelebration, "celebration", false, "celebrate completed todos")
	settingsSetCmd.Flags().BoolVar(&settingsKeyring, "keyring", false, "store --api-key in the OS keyring")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
