package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/smartoverview/internal/settings"
)

// FileConfig is the on-disk configuration schema (YAML, JSON, or TOML).
type FileConfig struct {
	BackendURL string `yaml:"backendUrl" json:"backendUrl" toml:"backendUrl"`
	Settings   string `yaml:"settings" json:"settings" toml:"settings"`

	Cache struct {
		Backend     string   `yaml:"backend" json:"backend" toml:"backend"`
		Dir         string   `yaml:"dir" json:"dir" toml:"dir"`
		SQLite      string   `yaml:"sqlite" json:"sqlite" toml:"sqlite"`
		TTL         Duration `yaml:"ttl" json:"ttl" toml:"ttl"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
		Redis       struct {
			Addr     string `yaml:"addr" json:"addr" toml:"addr"`
			Password string `yaml:"password" json:"password" toml:"password"`
			DB       int    `yaml:"db" json:"db" toml:"db"`
		} `yaml:"redis" json:"redis" toml:"redis"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	LLM struct {
		BaseURL    string `yaml:"base" json:"base" toml:"base"`
		Model      string `yaml:"model" json:"model" toml:"model"`
		APIKey     string `yaml:"key" json:"key" toml:"key"`
		AssistCode bool   `yaml:"assistCode" json:"assistCode" toml:"assistCode"`
	} `yaml:"llm" json:"llm" toml:"llm"`

	Fetch struct {
		UserAgent string   `yaml:"ua" json:"ua" toml:"ua"`
		Cookie    string   `yaml:"cookie" json:"cookie" toml:"cookie"`
		Timeout   Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
		Attempts  int      `yaml:"attempts" json:"attempts" toml:"attempts"`
	} `yaml:"fetch" json:"fetch" toml:"fetch"`

	OpenDelay    Duration `yaml:"openDelay" json:"openDelay" toml:"openDelay"`
	Wait         Duration `yaml:"wait" json:"wait" toml:"wait"`
	Concurrency  int      `yaml:"concurrency" json:"concurrency" toml:"concurrency"`
	SingleFlight bool     `yaml:"singleFlight" json:"singleFlight" toml:"singleFlight"`
	ExportDir    string   `yaml:"exportDir" json:"exportDir" toml:"exportDir"`
	Listen       string   `yaml:"listen" json:"listen" toml:"listen"`
	Verbose      bool     `yaml:"verbose" json:"verbose" toml:"verbose"`
	LogFormat    string   `yaml:"logFormat" json:"logFormat" toml:"logFormat"`
}

// Duration reads "24h"-style strings in every config format.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

// LoadConfigFile reads path choosing the codec by extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := settings.Decode(path, b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v Duration) {
		if v > 0 {
			*dst = time.Duration(v)
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setStr(&cfg.BackendURL, fc.BackendURL)
	setStr(&cfg.SettingsPath, fc.Settings)

	setStr(&cfg.Cache.Backend, fc.Cache.Backend)
	setStr(&cfg.Cache.Dir, fc.Cache.Dir)
	setStr(&cfg.Cache.SQLitePath, fc.Cache.SQLite)
	setDur(&cfg.Cache.TTL, fc.Cache.TTL)
	setStr(&cfg.Cache.RedisAddr, fc.Cache.Redis.Addr)
	setStr(&cfg.Cache.RedisPass, fc.Cache.Redis.Password)
	setInt(&cfg.Cache.RedisDB, fc.Cache.Redis.DB)
	if fc.Cache.StrictPerms {
		cfg.Cache.StrictPerms = true
	}

	setStr(&cfg.LLM.BaseURL, fc.LLM.BaseURL)
	setStr(&cfg.LLM.Model, fc.LLM.Model)
	setStr(&cfg.LLM.APIKey, fc.LLM.APIKey)
	if fc.LLM.AssistCode {
		cfg.LLM.AssistCode = true
	}

	setStr(&cfg.UserAgent, fc.Fetch.UserAgent)
	setStr(&cfg.Cookie, fc.Fetch.Cookie)
	setDur(&cfg.FetchTimeout, fc.Fetch.Timeout)
	setInt(&cfg.FetchAttempts, fc.Fetch.Attempts)

	setDur(&cfg.OpenDelay, fc.OpenDelay)
	setDur(&cfg.Wait, fc.Wait)
	setInt(&cfg.Concurrency, fc.Concurrency)
	if fc.SingleFlight {
		cfg.SingleFlight = true
	}
	setStr(&cfg.ExportDir, fc.ExportDir)
	setStr(&cfg.ListenAddr, fc.Listen)
	if fc.Verbose {
		cfg.Verbose = true
	}
	setStr(&cfg.LogFormat, fc.LogFormat)
}

// ValidateConfig rejects settings that would fail later in a less obvious
// place.
func ValidateConfig(cfg Config) error {
	switch cfg.Cache.Backend {
	case BackendFile:
		if strings.TrimSpace(cfg.Cache.Dir) == "" {
			return errors.New("config: cache.dir is required for the file backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(cfg.Cache.SQLitePath) == "" {
			return errors.New("config: cache.sqlite is required for the sqlite backend")
		}
	case BackendRedis:
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			return errors.New("config: cache.redis.addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown cache backend %q (want file, sqlite, redis, or memory)", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL <= 0 {
		return errors.New("config: cache.ttl must be positive")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be at least 1")
	}
	if cfg.OpenDelay < 0 || cfg.Wait < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	switch cfg.LogFormat {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", cfg.LogFormat)
	}
	return nil
}
