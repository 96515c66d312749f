package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/smartoverview/internal/app"
	"github.com/hyperifyio/smartoverview/internal/render"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		force        bool
		urlOverride  string
		wait         time.Duration
		concurrency  int
		singleFlight bool
		quiet        bool
	)
	cmd := &cobra.Command{
		Use:   "generate <page>...",
		Short: "Generate the overview for lecture pages (URLs or saved HTML)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if urlOverride != "" && len(args) > 1 {
				return fmt.Errorf("%w: --url applies to a single page", errUsage)
			}
			if cmd.Flags().Changed("wait") {
				cfg.Wait = wait
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if singleFlight {
				cfg.SingleFlight = true
			}
			if err := app.ValidateConfig(*cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				a, err := ctx.ensureApp(cmd, &render.Terminal{W: out, Quiet: quiet})
				if err != nil {
					return err
				}
				_, err = a.Generate(cmd.Context(), args[0], urlOverride, force)
				return err
			}

			a, err := ctx.ensureApp(cmd, render.Discard{})
			if err != nil {
				return err
			}
			results := a.GenerateAll(cmd.Context(), args, force)
			fmt.Fprintln(out, renderBatch(results))
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d overviews failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the cache and regenerate")
	cmd.Flags().StringVar(&urlOverride, "url", "", "Page URL to record for a saved HTML snapshot")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Re-fetch a remote page until its transcript appears, up to this long")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Pages generated in parallel")
	cmd.Flags().BoolVar(&singleFlight, "single-flight", false, "Collapse concurrent runs for the same page")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the loading line")
	return cmd
}

func renderBatch(results []app.BatchResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		source := "backend"
		if r.Cycle.FromCache {
			source = "cache"
		}
		errText := ""
		if r.Err != nil {
			source = "-"
			errText = r.Err.Error()
		}
		rows = append(rows, []string{
			r.Ref,
			r.Cycle.State.String(),
			source,
			r.Cycle.Elapsed.Round(time.Millisecond).String(),
			errText,
		})
	}
	return renderTable(
		[]string{"Page", "State", "Source", "Elapsed", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
