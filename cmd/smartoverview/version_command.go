package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/smartoverview/internal/app"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "smartoverview %s (commit %s, built %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
			return nil
		},
	}
	cmd.Annotations = map[string]string{"skipConfigLoad": "true"}
	return cmd
}
