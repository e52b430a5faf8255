package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/commentrank/internal/core/config"
	"github.com/hay-kot/commentrank/pkg/logutils"
)

// Flags holds global flag values. Config is loaded and merged with the
// option flags in Setup and is available to all commands.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	JSON       bool

	// Console is the target of console logging. Full-screen views swap it.
	Console *logutils.SwitchWriter

	// Config is set by LoadConfig.
	Config *config.Config

	opts options
}

// options mirrors the config fields that can be set from the command line.
type options struct {
	apiKey            string
	apiEndpoint       string
	takeoutDir        string
	inputs            []string
	cacheFile         string
	outputFile        string
	retryNotFound     bool
	omitNotFound      bool
	stopOnQuota       bool
	requestsPerSecond float64
	requestTimeout    time.Duration
	progress          string
}

// GlobalFlags returns the flags shared by every command.
func (f *Flags) GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("COMMENTRANK_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "write JSON logs to this file instead of the terminal",
			Sources:     cli.EnvVars("COMMENTRANK_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("COMMENTRANK_CONFIG"),
			Value:       config.DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print machine readable output",
			Destination: &f.JSON,
		},
		&cli.StringFlag{
			Name:        "api-key",
			Aliases:     []string{"k"},
			Usage:       "YouTube Data API v3 key",
			Sources:     cli.EnvVars("COMMENTRANK_API_KEY", "YOUTUBE_V3_API_KEY"),
			Destination: &f.opts.apiKey,
		},
		&cli.StringFlag{
			Name:        "api-endpoint",
			Usage:       "override the YouTube API base URL",
			Sources:     cli.EnvVars("COMMENTRANK_API_ENDPOINT"),
			Hidden:      true,
			Destination: &f.opts.apiEndpoint,
		},
		&cli.StringFlag{
			Name:        "takeout-dir",
			Aliases:     []string{"d"},
			Usage:       "directory holding the Google Takeout export",
			Sources:     cli.EnvVars("COMMENTRANK_TAKEOUT_DIR"),
			Destination: &f.opts.takeoutDir,
		},
		&cli.StringSliceFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "comment CSV files or globs, replaces takeout discovery (repeatable)",
			Destination: &f.opts.inputs,
		},
		&cli.StringFlag{
			Name:        "cache-file",
			Usage:       "path to the cache log",
			Sources:     cli.EnvVars("COMMENTRANK_CACHE_FILE"),
			Destination: &f.opts.cacheFile,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "path of the ranked JSON output",
			Sources:     cli.EnvVars("COMMENTRANK_OUTPUT_FILE"),
			Destination: &f.opts.outputFile,
		},
		&cli.BoolFlag{
			Name:        "retry-not-found",
			Usage:       "refetch comments cached as not found",
			Sources:     cli.EnvVars("COMMENTRANK_RETRY_NOT_FOUND"),
			Destination: &f.opts.retryNotFound,
		},
		&cli.BoolFlag{
			Name:        "omit-not-found",
			Usage:       "leave comments that no longer exist out of the output",
			Sources:     cli.EnvVars("COMMENTRANK_OMIT_NOT_FOUND"),
			Destination: &f.opts.omitNotFound,
		},
		&cli.BoolFlag{
			Name:        "stop-on-quota",
			Usage:       "stop calling the API once the daily quota is exhausted",
			Sources:     cli.EnvVars("COMMENTRANK_STOP_ON_QUOTA"),
			Value:       true,
			Destination: &f.opts.stopOnQuota,
		},
		&cli.FloatFlag{
			Name:        "rps",
			Usage:       "maximum API requests per second (0 for no limit)",
			Sources:     cli.EnvVars("COMMENTRANK_REQUESTS_PER_SECOND"),
			Destination: &f.opts.requestsPerSecond,
		},
		&cli.DurationFlag{
			Name:        "request-timeout",
			Usage:       "timeout for a single API request",
			Sources:     cli.EnvVars("COMMENTRANK_REQUEST_TIMEOUT"),
			Destination: &f.opts.requestTimeout,
		},
		&cli.StringFlag{
			Name:        "progress",
			Usage:       "progress display (auto, always, never)",
			Sources:     cli.EnvVars("COMMENTRANK_PROGRESS"),
			Destination: &f.opts.progress,
		},
	}
}

// LoadConfig loads the config file and applies every option flag that was
// set on the command line or through the environment. It runs inside the
// action, after c has parsed flags given behind the subcommand name.
func (f *Flags) LoadConfig(_ context.Context, c *cli.Command) error {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f.apply(c, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	f.Config = cfg
	return nil
}

func (f *Flags) apply(c *cli.Command, cfg *config.Config) {
	o := f.opts
	if c.IsSet("api-key") {
		cfg.APIKey = o.apiKey
	}
	if c.IsSet("takeout-dir") {
		cfg.TakeoutDir = o.takeoutDir
	}
	if c.IsSet("input") {
		cfg.Inputs = o.inputs
	}
	if c.IsSet("cache-file") {
		cfg.CacheFile = o.cacheFile
	}
	if c.IsSet("output") {
		cfg.OutputFile = o.outputFile
	}
	if c.IsSet("retry-not-found") {
		cfg.RetryNotFound = o.retryNotFound
	}
	if c.IsSet("omit-not-found") {
		cfg.OmitNotFound = o.omitNotFound
	}
	if c.IsSet("stop-on-quota") {
		cfg.StopOnQuota = o.stopOnQuota
	}
	if c.IsSet("rps") {
		cfg.RequestsPerSecond = o.requestsPerSecond
	}
	if c.IsSet("request-timeout") {
		cfg.RequestTimeout = o.requestTimeout
	}
	if c.IsSet("progress") {
		cfg.Progress = o.progress
	}
}
