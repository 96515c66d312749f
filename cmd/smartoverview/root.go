package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "smartoverview",
		Short:         "AI lecture overviews for course pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (yaml, json, or toml)")
	flags.StringSliceVar(&ctx.envFiles, "env-file", []string{".env"}, "Dotenv files loaded before reading the environment")
	flags.StringVar(&ctx.backendURL, "backend-url", "", "Backend base URL; overrides the settings file")
	flags.StringVar(&ctx.settingsPath, "settings", "", "Settings file holding the saved backend URL")
	flags.StringVar(&ctx.cacheBackend, "cache-backend", "", "Cache storage: file, sqlite, redis, or memory")
	flags.StringVar(&ctx.cacheDir, "cache-dir", "", "Directory for the file cache")
	flags.StringVar(&ctx.cacheSQLite, "cache-sqlite", "", "Database path for the sqlite cache")
	flags.StringVar(&ctx.redisAddr, "redis-addr", "", "Redis address for the redis cache")
	flags.DurationVar(&ctx.cacheTTL, "cache-ttl", 0, "How long cached overviews stay valid")
	flags.StringVar(&ctx.cookie, "cookie", "", "Cookie header sent with page fetches")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Verbose logging")
	flags.StringVar(&ctx.logFormat, "log-format", "", "Log format: auto, console, or json")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newCachedCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newSettingsCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
