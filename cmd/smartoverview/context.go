package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/smartoverview/internal/app"
	"github.com/hyperifyio/smartoverview/internal/render"
)

// defaultConfigFile is read when present and no --config is given.
const defaultConfigFile = "smartoverview.yaml"

type commandContext struct {
	configPath   string
	envFiles     []string
	backendURL   string
	settingsPath string
	cacheBackend string
	cacheDir     string
	cacheSQLite  string
	redisAddr    string
	cacheTTL     time.Duration
	cookie       string
	verbose      bool
	logFormat    string

	config *app.Config
	app    *app.App
}

// ensureConfig layers defaults, the config file, the environment, and
// flags, then configures logging.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*app.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg := app.DefaultConfig()

	if err := app.LoadEnvFiles(false, c.envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	path := strings.TrimSpace(c.configPath)
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	app.ApplyEnvOverrides(&cfg)
	c.applyFlags(cmd, &cfg)

	if err := app.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.SetupLogging(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	c.config = &cfg
	return c.config, nil
}

func (c *commandContext) applyFlags(cmd *cobra.Command, cfg *app.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("backend-url") {
		cfg.BackendURL = c.backendURL
	}
	if changed("settings") {
		cfg.SettingsPath = c.settingsPath
	}
	if changed("cache-backend") {
		cfg.Cache.Backend = c.cacheBackend
	}
	if changed("cache-dir") {
		cfg.Cache.Dir = c.cacheDir
	}
	if changed("cache-sqlite") {
		cfg.Cache.SQLitePath = c.cacheSQLite
	}
	if changed("redis-addr") {
		cfg.Cache.RedisAddr = c.redisAddr
	}
	if changed("cache-ttl") {
		cfg.Cache.TTL = c.cacheTTL
	}
	if changed("cookie") {
		cfg.Cookie = c.cookie
	}
	if changed("verbose") {
		cfg.Verbose = c.verbose
	}
	if changed("log-format") {
		cfg.LogFormat = c.logFormat
	}
}

// ensureApp builds the App on first use. r receives single-page lifecycle
// events.
func (c *commandContext) ensureApp(cmd *cobra.Command, r render.Renderer) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), *cfg, r)
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}
	c.app = a
	return a, nil
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

var errUsage = errors.New("invalid arguments")

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
