package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	derrors "github.com/vango-dev/didact/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "didact.yaml"

	// DefaultAddr is the default live server address.
	DefaultAddr = "localhost:7070"

	// DefaultFrameInterval is the default time between scheduler slices.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultFrameBudget is the default length of a scheduler slice.
	DefaultFrameBudget = 12 * time.Millisecond

	// DefaultYieldThreshold is the default remaining slice time below which
	// the work loop yields.
	DefaultYieldThreshold = time.Millisecond

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "didact"
)

// Config represents the complete didact.yaml configuration.
type Config struct {
	// Scheduler controls how render work is sliced.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Metrics controls Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Server contains live server settings.
	Server ServerConfig `yaml:"server"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains frame loop settings.
type SchedulerConfig struct {
	// FrameInterval is the time between slices (e.g. "16ms").
	FrameInterval time.Duration `yaml:"frameInterval,omitempty"`

	// FrameBudget is the time a slice may spend on render work.
	FrameBudget time.Duration `yaml:"frameBudget,omitempty"`

	// YieldThreshold is the remaining slice time below which the work loop
	// stops taking units of work.
	YieldThreshold time.Duration `yaml:"yieldThreshold,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes runtime metrics (default: true).
	Enabled *bool `yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `yaml:"namespace,omitempty"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadOptional reads didact.yaml from dir if present. A missing file
// yields the defaults.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, derrors.New(derrors.CodeConfigParse).WithDetail(path).Wrap(err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, derrors.New(derrors.CodeConfigParse).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML and durations look like 16ms")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return derrors.New(derrors.CodeConfigParse).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return derrors.New(derrors.CodeConfigParse).WithDetail(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from, or "" for
// defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Scheduler.FrameInterval == 0 {
		c.Scheduler.FrameInterval = DefaultFrameInterval
	}
	if c.Scheduler.FrameBudget == 0 {
		c.Scheduler.FrameBudget = DefaultFrameBudget
	}
	if c.Scheduler.YieldThreshold == 0 {
		c.Scheduler.YieldThreshold = DefaultYieldThreshold
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	s := c.Scheduler
	switch {
	case s.FrameInterval < 0 || s.FrameBudget < 0 || s.YieldThreshold < 0:
		return invalid("scheduler durations must not be negative")
	case s.FrameBudget > s.FrameInterval:
		return invalid(fmt.Sprintf("frameBudget %s exceeds frameInterval %s", s.FrameBudget, s.FrameInterval))
	case s.YieldThreshold >= s.FrameBudget:
		return invalid(fmt.Sprintf("yieldThreshold %s must be below frameBudget %s", s.YieldThreshold, s.FrameBudget))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return invalid(fmt.Sprintf("log format %q is not text or json", c.Log.Format))
	}
	return nil
}

// MetricsEnabled reports whether runtime metrics are exposed.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, invalid(fmt.Sprintf("log level %q", l.Level)).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	return level, nil
}

// NewLogger builds a slog logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func invalid(detail string) *derrors.Error {
	return derrors.New(derrors.CodeConfigInvalid).WithDetail(detail)
}
