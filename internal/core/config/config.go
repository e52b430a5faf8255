// Package config loads and validates the commentrank configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Progress display modes.
const (
	ProgressAuto   = "auto"
	ProgressAlways = "always"
	ProgressNever  = "never"
)

const (
	DefaultCacheFile      = "comments_cache.csv"
	DefaultOutputFile     = "most_liked_comments.json"
	DefaultRequestTimeout = 15 * time.Second
)

// Config is the on-disk configuration. Every field can be overridden by a
// flag or environment variable; see the run command.
type Config struct {
	APIKey            string        `yaml:"api_key"`
	TakeoutDir        string        `yaml:"takeout_dir"`
	Inputs            []string      `yaml:"inputs"` // globs, override takeout discovery
	CacheFile         string        `yaml:"cache_file"`
	OutputFile        string        `yaml:"output_file"`
	RetryNotFound     bool          `yaml:"retry_not_found"`
	OmitNotFound      bool          `yaml:"omit_not_found"`
	StopOnQuota       bool          `yaml:"stop_on_quota"`
	RequestsPerSecond float64       `yaml:"requests_per_second"` // 0 disables pacing
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	Progress          string        `yaml:"progress"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TakeoutDir:     ".",
		CacheFile:      DefaultCacheFile,
		OutputFile:     DefaultOutputFile,
		StopOnQuota:    true,
		RequestTimeout: DefaultRequestTimeout,
		Progress:       ProgressAuto,
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "commentrank", "config.yaml")
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults restores defaults for values explicitly emptied in the file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.TakeoutDir == "" {
		c.TakeoutDir = defaults.TakeoutDir
	}
	if c.CacheFile == "" {
		c.CacheFile = defaults.CacheFile
	}
	if c.OutputFile == "" {
		c.OutputFile = defaults.OutputFile
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.Progress == "" {
		c.Progress = defaults.Progress
	}
}

// Save writes the config to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(fileConfig{
		APIKey:            c.APIKey,
		TakeoutDir:        c.TakeoutDir,
		Inputs:            c.Inputs,
		CacheFile:         c.CacheFile,
		OutputFile:        c.OutputFile,
		RetryNotFound:     c.RetryNotFound,
		OmitNotFound:      c.OmitNotFound,
		StopOnQuota:       c.StopOnQuota,
		RequestsPerSecond: c.RequestsPerSecond,
		RequestTimeout:    c.RequestTimeout.String(),
		Progress:          c.Progress,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// The file may hold an API key.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// fileConfig mirrors Config with durations as strings, which yaml.v3 can
// read back into a time.Duration.
type fileConfig struct {
	APIKey            string   `yaml:"api_key,omitempty"`
	TakeoutDir        string   `yaml:"takeout_dir"`
	Inputs            []string `yaml:"inputs,omitempty"`
	CacheFile         string   `yaml:"cache_file"`
	OutputFile        string   `yaml:"output_file"`
	RetryNotFound     bool     `yaml:"retry_not_found"`
	OmitNotFound      bool     `yaml:"omit_not_found"`
	StopOnQuota       bool     `yaml:"stop_on_quota"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	RequestTimeout    string   `yaml:"request_timeout"`
	Progress          string   `yaml:"progress"`
}
