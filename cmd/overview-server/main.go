package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/app"
	"github.com/hyperifyio/smartoverview/internal/server"
)

func main() {
	var (
		configPath     string
		listenAddr     string
		llmBaseURL     string
		llmModel       string
		llmKey         string
		assistCode     bool
		cacheBackend   string
		cacheDir       string
		processTimeout time.Duration
		verbose        bool
		logFormat      string
	)

	flag.StringVar(&configPath, "config", "", "Configuration file path (yaml, json, or toml)")
	flag.StringVar(&listenAddr, "addr", "", "Listen address (default :8000)")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Model name; empty serves mock summaries")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.BoolVar(&assistCode, "llm.assistCode", false, "Ask the model for snippets when few are found in the transcript")
	flag.StringVar(&cacheBackend, "cache.backend", "", "Model response cache: file, sqlite, redis, or memory")
	flag.StringVar(&cacheDir, "cache.dir", "", "Directory for the file cache")
	flag.DurationVar(&processTimeout, "process.timeout", 0, "Upper bound for one /api/process request")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.StringVar(&logFormat, "log.format", "", "Log format: auto, console, or json")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.ListenAddr = listenAddr
		case "llm.base":
			cfg.LLM.BaseURL = llmBaseURL
		case "llm.model":
			cfg.LLM.Model = llmModel
		case "llm.key":
			cfg.LLM.APIKey = llmKey
		case "llm.assistCode":
			cfg.LLM.AssistCode = assistCode
		case "cache.backend":
			cfg.Cache.Backend = cacheBackend
		case "cache.dir":
			cfg.Cache.Dir = cacheDir
		case "process.timeout":
			cfg.ProcessTimeout = processTimeout
		case "v":
			cfg.Verbose = verbose
		case "log.format":
			cfg.LogFormat = logFormat
		}
	})
	if err := app.ValidateConfig(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	app.SetupLogging(os.Stderr, cfg.LogFormat, cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

// loadConfig applies dotenv files, the optional config file and the
// environment on top of the defaults.
func loadConfig(path string) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnvFiles(false, ".env"); err != nil {
		return cfg, err
	}
	if path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	return cfg, nil
}

func newHandler(ctx context.Context, cfg app.Config) (*server.Server, func() error, error) {
	storage, closeFn, err := app.OpenStorage(ctx, cfg.Cache)
	if err != nil {
		return nil, closeFn, fmt.Errorf("open cache: %w", err)
	}
	svc := app.NewService(cfg, storage)
	return server.New(svc, server.WithProcessTimeout(cfg.ProcessTimeout)), closeFn, nil
}

func run(ctx context.Context, cfg app.Config) error {
	h, closeFn, err := newHandler(ctx, cfg)
	defer func() { _ = closeFn() }()
	if err != nil {
		return err
	}
	log.Info().Str("addr", cfg.ListenAddr).Str("model", cfg.LLM.Model).Str("cache", cfg.Cache.Backend).Msg("overview server listening")
	return server.ListenAndServe(ctx, cfg.ListenAddr, h)
}
