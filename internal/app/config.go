package app

import (
	"time"

	"github.com/hyperifyio/smartoverview/internal/cache"
	"github.com/hyperifyio/smartoverview/internal/fetch"
	"github.com/hyperifyio/smartoverview/internal/transcript"
	"github.com/hyperifyio/smartoverview/internal/watch"
)

// Storage backend names accepted in CacheConfig.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// CacheConfig selects and configures the overview cache storage.
type CacheConfig struct {
	Backend     string
	Dir         string
	SQLitePath  string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	TTL         time.Duration
	StrictPerms bool
}

// LLMConfig is used by the summarization server only.
type LLMConfig struct {
	BaseURL    string
	Model      string
	APIKey     string
	AssistCode bool
}

// Config holds runtime configuration for the CLI and the server.
type Config struct {
	// BackendURL, when set, wins over the settings file.
	BackendURL   string
	SettingsPath string

	Cache CacheConfig
	LLM   LLMConfig

	// Page fetching
	UserAgent      string
	Cookie         string
	FetchTimeout   time.Duration
	FetchAttempts  int
	BackendTimeout time.Duration

	// Pipeline behaviour
	OpenDelay    time.Duration
	Wait         time.Duration
	Concurrency  int
	SingleFlight bool
	ExportDir    string

	// Server
	ListenAddr     string
	ProcessTimeout time.Duration

	Verbose   bool
	LogFormat string
}

// DefaultConfig is the base layer every other source overrides.
func DefaultConfig() Config {
	return Config{
		SettingsPath: "smartoverview-settings.yaml",
		Cache: CacheConfig{
			Backend:    BackendFile,
			Dir:        ".smartoverview-cache",
			SQLitePath: ".smartoverview-cache.db",
			RedisAddr:  "localhost:6379",
			TTL:        cache.DefaultTTL,
		},
		UserAgent:      fetch.DefaultUserAgent,
		FetchTimeout:   15 * time.Second,
		FetchAttempts:  2,
		BackendTimeout: 120 * time.Second,
		OpenDelay:      transcript.DefaultOpenDelay,
		Concurrency:    4,
		ExportDir:      ".",
		ListenAddr:     ":8000",
		ProcessTimeout: 90 * time.Second,
		LogFormat:      "auto",
	}
}

// WaitSchedule is the watch schedule for --wait.
func (c Config) WaitSchedule() watch.Schedule {
	s := watch.DefaultSchedule
	s.MaxElapsed = c.Wait
	return s
}
