package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/commentrank/internal/core/validate"
)

// ErrMissingAPIKey is returned by ValidateRun when no API key is configured.
var ErrMissingAPIKey = errors.New("api key is required")

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("cache_file", c.CacheFile, validate.NotEmpty),
		criterio.Run("output_file", c.OutputFile, validate.NotEmpty),
		c.validateDistinctFiles(),
		c.validateInputs(),
		validate.Field("requests_per_second", nonNegative(c.RequestsPerSecond)),
		validate.Field("request_timeout", positiveDuration(c.RequestTimeout)),
		criterio.Run("progress", c.Progress, isProgressMode),
	)
}

// ValidateRun checks everything a run needs on top of Validate.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return criterio.NewFieldErrors("api_key", ErrMissingAPIKey)
	}
	return nil
}

// ValidateDeep adds file system checks to Validate. The configPath argument
// specifies the config file location to validate (empty string skips the
// config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("takeout_dir", c.TakeoutDir, validate.Directory),
		criterio.Run("cache_file", c.CacheFile, validate.FileOrNotExist),
		criterio.Run("output_file", c.OutputFile, validate.FileOrNotExist),
	)
}

func (c *Config) validateDistinctFiles() error {
	if c.CacheFile == "" || c.OutputFile == "" {
		return nil
	}
	if filepath.Clean(c.CacheFile) == filepath.Clean(c.OutputFile) {
		return criterio.NewFieldErrors("output_file", fmt.Errorf("must differ from cache_file %q", c.CacheFile))
	}
	return nil
}

func (c *Config) validateInputs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Inputs {
		if !doublestar.ValidatePathPattern(pattern) {
			errs = errs.Append(fmt.Sprintf("inputs[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func nonNegative(f float64) error {
	if f < 0 {
		return fmt.Errorf("must not be negative, got %v", f)
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func isProgressMode(s string) error {
	switch s {
	case ProgressAuto, ProgressAlways, ProgressNever:
		return nil
	}
	return fmt.Errorf("must be one of %s, %s, %s; got %q", ProgressAuto, ProgressAlways, ProgressNever, s)
}
