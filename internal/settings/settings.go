// Package settings resolves the backend base URL the way the extension
// popup did: one persisted value with a hard-coded fallback.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v3"
)

// DefaultBackendURL is used when nothing is configured.
const DefaultBackendURL = "https://udemy-extension.onrender.com"

// EnvBackendURL overrides the persisted value when set.
const EnvBackendURL = "SMARTOVERVIEW_BACKEND_URL"

// ErrEmptyURL is returned by Save for a blank URL.
var ErrEmptyURL = errors.New("please enter a valid URL")

// Provider is read at the start of every generation cycle.
type Provider interface {
	BackendURL(ctx context.Context) string
}

// Static always returns URL, or the default when URL is blank.
type Static string

func (s Static) BackendURL(context.Context) string {
	if v := strings.TrimSpace(string(s)); v != "" {
		return v
	}
	return DefaultBackendURL
}

// File is the persisted settings document.
type File struct {
	BackendURL string `yaml:"backendUrl" json:"backendUrl" toml:"backendUrl"`
}

// FileProvider reads settings from Path. The format follows the extension:
// .yaml/.yml, .json, or .toml; anything else is tried as YAML then JSON.
type FileProvider struct {
	Path string
	// Getenv is used for the environment override. Nil uses os.Getenv.
	Getenv func(string) string
}

func (p *FileProvider) getenv(k string) string {
	if p.Getenv != nil {
		return p.Getenv(k)
	}
	return os.Getenv(k)
}

// BackendURL returns env override, then the file value, then the default.
// Read errors fall back to the default and are logged.
func (p *FileProvider) BackendURL(ctx context.Context) string {
	if v := strings.TrimSpace(p.getenv(EnvBackendURL)); v != "" {
		return v
	}
	f, err := p.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", p.Path).Msg("settings unreadable; using default backend")
		}
		return DefaultBackendURL
	}
	if v := strings.TrimSpace(f.BackendURL); v != "" {
		return v
	}
	return DefaultBackendURL
}

// Load parses the settings file.
func (p *FileProvider) Load() (File, error) {
	var f File
	if strings.TrimSpace(p.Path) == "" {
		return f, os.ErrNotExist
	}
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return f, err
	}
	if err := Decode(p.Path, b, &f); err != nil {
		return f, err
	}
	return f, nil
}

// Save persists url after trimming whitespace and one trailing slash.
func (p *FileProvider) Save(url string) error {
	url = Clean(url)
	if url == "" {
		return ErrEmptyURL
	}
	if strings.TrimSpace(p.Path) == "" {
		return errors.New("settings path not configured")
	}
	b, err := Encode(p.Path, File{BackendURL: url})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(p.Path, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	log.Info().Str("backendUrl", url).Str("path", p.Path).Msg("settings saved")
	return nil
}

// Clean trims spaces and a trailing slash, as the popup did before saving.
func Clean(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// Decode unmarshals b into v choosing the codec from path's extension.
func Decode(path string, b []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, v); err != nil {
			return fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, v); err != nil {
			if jerr := json.Unmarshal(b, v); jerr != nil {
				return fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return nil
}

// Encode marshals v choosing the codec from path's extension. YAML is the
// default.
func Encode(path string, v any) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case ".toml":
		return toml.Marshal(v)
	default:
		return yaml.Marshal(v)
	}
}
