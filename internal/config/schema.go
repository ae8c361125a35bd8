package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Layout   LayoutConfig   `yaml:"layout"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// LayoutBackend selects where diagram layouts are stored
type LayoutBackend string

const (
	BackendFile   LayoutBackend = "file"
	BackendSQLite LayoutBackend = "sqlite"
	BackendRedis  LayoutBackend = "redis"
)

// Valid reports whether b names a known backend
func (b LayoutBackend) Valid() bool {
	switch b {
	case BackendFile, BackendSQLite, BackendRedis:
		return true
	}
	return false
}

// LayoutConfig holds layout persistence settings
type LayoutConfig struct {
	Backend       LayoutBackend `yaml:"backend"`
	SQLitePath    string        `yaml:"sqlite_path,omitempty"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db,omitempty"`
	RedisPrefix   string        `yaml:"redis_prefix,omitempty"`
	RedisTTL      *Duration     `yaml:"redis_ttl,omitempty"`
}

// AutosaveConfig controls periodic saving of dirty models
type AutosaveConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
