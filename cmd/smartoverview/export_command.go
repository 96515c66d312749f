package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/smartoverview/internal/render"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export <url>",
		Short: "Write the cached overview for a page as Markdown or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.ExportDir = dir
			}
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			path, err := a.Export(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(render.FormatMarkdown), "Export format: md or pdf")
	cmd.Flags().StringVarP(&dir, "dir", "o", "", "Directory to write into")
	return cmd
}
