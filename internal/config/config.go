// Package config loads the editor's settings file.
//
// Config file locations (priority order):
//  1. $THREATFORGE_CONFIG
//  2. ./threatforge.yaml
//  3. $XDG_CONFIG_HOME/threatforge/config.yaml
//  4. ~/.config/threatforge/config.yaml
//  5. /etc/threatforge/config.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"threatforge/internal/logging"
)

const (
	DefaultAddr             = ":3000"
	DefaultLogLevel         = "info"
	DefaultSQLitePath       = "./threatforge.db"
	DefaultRedisAddr        = "localhost:6379"
	DefaultAutosaveInterval = 30 * time.Second
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Autosave: AutosaveConfig{Enabled: true},
		Metrics:  MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = string(logging.FormatText)
	}
	if c.Layout.Backend == "" {
		c.Layout.Backend = BackendFile
	}
	if c.Layout.SQLitePath == "" {
		c.Layout.SQLitePath = DefaultSQLitePath
	}
	if c.Layout.RedisAddr == "" {
		c.Layout.RedisAddr = DefaultRedisAddr
	}
	if c.Autosave.Interval == 0 {
		c.Autosave.Interval = Duration(DefaultAutosaveInterval)
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if !c.Layout.Backend.Valid() {
		return fmt.Errorf("unknown layout backend %q", c.Layout.Backend)
	}
	if c.Autosave.Interval.Duration() < 0 {
		return fmt.Errorf("autosave interval must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a config log level to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Addr: %s, Log: %s (%s)\n", c.Server.Addr, c.Log.Level, c.Log.Format)
	summary += fmt.Sprintf("Layouts: %s", c.Layout.Backend)
	switch c.Layout.Backend {
	case BackendSQLite:
		summary += fmt.Sprintf(" (%s)", c.Layout.SQLitePath)
	case BackendRedis:
		summary += fmt.Sprintf(" (%s)", c.Layout.RedisAddr)
	}
	if c.Autosave.Enabled {
		summary += fmt.Sprintf(", Autosave: every %s", c.Autosave.Interval.Duration())
	} else {
		summary += ", Autosave: off"
	}
	return summary
}
