package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces this tool's variables.
const EnvPrefix = "SMARTOVERVIEW_"

// ApplyEnvOverrides overrides cfg with any environment variable that is set.
// It runs after the config file and before flags.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
			}
		}
	}
	dur := func(dst *time.Duration, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	num := func(dst *int, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	boolean := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	str(&cfg.BackendURL, EnvPrefix+"BACKEND_URL")
	str(&cfg.SettingsPath, EnvPrefix+"SETTINGS")

	str(&cfg.Cache.Backend, EnvPrefix+"CACHE_BACKEND")
	str(&cfg.Cache.Dir, "CACHE_DIR", EnvPrefix+"CACHE_DIR")
	str(&cfg.Cache.SQLitePath, EnvPrefix+"CACHE_SQLITE")
	str(&cfg.Cache.RedisAddr, "REDIS_ADDR", EnvPrefix+"REDIS_ADDR")
	str(&cfg.Cache.RedisPass, "REDIS_PASSWORD", EnvPrefix+"REDIS_PASSWORD")
	num(&cfg.Cache.RedisDB, EnvPrefix+"REDIS_DB")
	dur(&cfg.Cache.TTL, EnvPrefix+"CACHE_TTL")
	boolean(&cfg.Cache.StrictPerms, "CACHE_STRICT_PERMS")

	str(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	str(&cfg.LLM.Model, "LLM_MODEL")
	str(&cfg.LLM.APIKey, "LLM_API_KEY")
	boolean(&cfg.LLM.AssistCode, EnvPrefix+"ASSIST_CODE")

	str(&cfg.UserAgent, EnvPrefix+"USER_AGENT")
	str(&cfg.Cookie, EnvPrefix+"COOKIE")
	dur(&cfg.FetchTimeout, EnvPrefix+"FETCH_TIMEOUT")

	dur(&cfg.OpenDelay, EnvPrefix+"OPEN_DELAY")
	dur(&cfg.Wait, EnvPrefix+"WAIT")
	num(&cfg.Concurrency, EnvPrefix+"CONCURRENCY")
	boolean(&cfg.SingleFlight, EnvPrefix+"SINGLE_FLIGHT")
	str(&cfg.ExportDir, EnvPrefix+"EXPORT_DIR")
	str(&cfg.ListenAddr, "ADDR", EnvPrefix+"LISTEN")

	boolean(&cfg.Verbose, "VERBOSE")
	str(&cfg.LogFormat, EnvPrefix+"LOG_FORMAT")
}
