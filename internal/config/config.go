// Package config handles loading taskdeck configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/taskdeck/config.yaml
//   - State:  ~/.local/state/taskdeck/ (session db, token file, logs)
//
// Environment variables override file values so the client can be
// pointed at another server without editing the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the taskdeck client.
type Config struct {
	// APIBaseURL is the root of the project management service.
	APIBaseURL string `yaml:"api_base_url,omitempty"`
	// PerPage is the page size requested for project and task lists.
	PerPage int `yaml:"per_page,omitempty"`
	// SearchDebounceMS is the quiet period before a typed search is applied.
	SearchDebounceMS int `yaml:"search_debounce_ms,omitempty"`
	// ScrollMargin is the lookahead distance (rows) for triggering the
	// next page fetch before the list bottom is reached.
	ScrollMargin int `yaml:"scroll_margin,omitempty"`
	// StateDir overrides the default state directory.
	StateDir string `yaml:"state_dir,omitempty"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:       "http://localhost:8743",
		PerPage:          10,
		SearchDebounceMS: 400,
		ScrollMargin:     200,
		LogLevel:         "info",
	}
}

// SearchDebounce returns the debounce quiet period as a duration.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// ConfigDir returns the XDG config directory for taskdeck.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "taskdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskdeck")
}

// DefaultStateDir returns the XDG state directory for taskdeck.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "taskdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "taskdeck")
}

// Load reads config.yaml if present, applies environment overrides and
// validates the result. A missing file is not an error.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(ConfigDir(), "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir()
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = envStr("TASKDECK_API_URL", cfg.APIBaseURL)
	cfg.PerPage = envInt("TASKDECK_PER_PAGE", cfg.PerPage)
	cfg.SearchDebounceMS = envInt("TASKDECK_SEARCH_DEBOUNCE_MS", cfg.SearchDebounceMS)
	cfg.ScrollMargin = envInt("TASKDECK_SCROLL_MARGIN", cfg.ScrollMargin)
	cfg.StateDir = envStr("TASKDECK_STATE_DIR", cfg.StateDir)
	cfg.LogLevel = envStr("TASKDECK_LOG_LEVEL", cfg.LogLevel)
}

func (c Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		return fmt.Errorf("per_page must be between 1 and 100, got %d", c.PerPage)
	}
	if c.SearchDebounceMS < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative, got %d", c.SearchDebounceMS)
	}
	if c.ScrollMargin < 0 {
		return fmt.Errorf("scroll_margin must not be negative, got %d", c.ScrollMargin)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
