package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved backend URL",
	}
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the backend URL in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.BackendURL(cmd.Context()))
			return nil
		},
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Save the backend URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			if err := a.SaveBackendURL(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved!")
			return nil
		},
	})
	return settingsCmd
}
