package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/smartoverview/internal/render"
)

func newCachedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cached <url>",
		Short: "Print the cached overview for a page without fetching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			r, ok := a.Cached(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no cached overview for %s", args[0])
			}
			t := &render.Terminal{W: cmd.OutOrStdout()}
			t.Render(r, true)
			return nil
		},
	}
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the overview cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			st := a.Stats(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Total", "Valid", "Expired"},
				[][]string{{strconv.Itoa(st.Total), strconv.Itoa(st.Valid), strconv.Itoa(st.Expired)}},
				[]columnAlignment{alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			n := a.ClearCache(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached overview(s)\n", n)
			return nil
		},
	}
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired and unreadable cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd, nil)
			if err != nil {
				return err
			}
			n := a.PurgeCache(cmd.Context())
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries purged")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired entries\n", n)
			return nil
		},
	}
}
