package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/commentrank/internal/core/config"
	"github.com/hay-kot/commentrank/internal/core/logging"
	"github.com/hay-kot/commentrank/internal/core/remedy"
	"github.com/hay-kot/commentrank/internal/core/styles"
	"github.com/hay-kot/commentrank/internal/enrich"
	"github.com/hay-kot/commentrank/internal/report"
	"github.com/hay-kot/commentrank/internal/store/cachelog"
	"github.com/hay-kot/commentrank/internal/takeout"
	"github.com/hay-kot/commentrank/internal/tui/progress"
	"github.com/hay-kot/commentrank/internal/youtube"
	"github.com/hay-kot/commentrank/pkg/profiler"
	"github.com/hay-kot/commentrank/pkg/randid"
)

// isTerminal reports whether f is attached to a terminal.
// Package-level variable to allow test overrides.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type RunCmd struct {
	flags        *Flags
	profilerPort int
}

func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Fetch like counts for your comments and write the ranking",
		UsageText: "commentrank run [options]",
		Description: `Reads the comment ids from your Google Takeout export, looks up each comment
with the YouTube Data API and writes them to the output file, most liked first.

Every result is saved to the cache log as soon as it arrives. Interrupting a
run, or running out of API quota, loses nothing: the next run only fetches the
comments that are still missing.

This is also what runs when commentrank is called without a command.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "serve pprof on this loopback port while running (0 disables)",
				Sources:     cli.EnvVars("COMMENTRANK_PROFILER_PORT"),
				Hidden:      true,
				Destination: &cmd.profilerPort,
			},
		},
		Action: cmd.Run,
	})
	return app
}

// Run executes the enrichment pipeline.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.LoadConfig(ctx, c); err != nil {
		return err
	}
	cfg := cmd.flags.Config

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logging.WithRunID(ctx, randid.Generate(8))
	logger := logging.Component("run")

	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort, logging.Component("profiler"))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
	}

	files, err := takeout.Resolve(cfg.TakeoutDir, cfg.Inputs, cfg.CacheFile, cfg.OutputFile)
	if err != nil {
		if errors.Is(err, takeout.ErrNoInputs) {
			return remedy.MissingInputs(err)
		}
		return fmt.Errorf("resolve inputs: %w", err)
	}

	ids, err := takeout.ReadIDs(ctx, logging.Component("takeout"), files)
	if err != nil {
		return remedy.MissingInputs(err)
	}
	logger.Info().Ctx(ctx).Int("files", len(files)).Int("ids", len(ids)).Msg("loaded comment ids")

	if cfg.APIKey == "" {
		return remedy.MissingAPIKey(config.ErrMissingAPIKey)
	}

	client, err := youtube.New(ctx, youtube.Config{
		APIKey:            cfg.APIKey,
		Endpoint:          cmd.flags.opts.apiEndpoint,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.RequestTimeout,
	}, logging.Component("youtube"))
	if err != nil {
		return remedy.MissingAPIKey(err)
	}

	store := cachelog.New(cfg.CacheFile, logging.Component("cache"))
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close cache")
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := enrich.Options{
		RetryNotFound: cfg.RetryNotFound,
		StopOnQuota:   cfg.StopOnQuota,
	}

	var (
		display *progress.Display
		console io.Writer
	)
	if cmd.showProgress(cfg.Progress) {
		display = progress.Start(context.WithoutCancel(ctx), cancel, os.Stdin, os.Stderr)
		opts.Observer = display
		if cmd.flags.Console != nil {
			console = cmd.flags.Console.Set(display)
		}
	}

	summary, state, runErr := enrich.New(store, client, opts, logging.Component("enrich")).Run(runCtx, ids)

	if display != nil {
		if console != nil {
			cmd.flags.Console.Set(console)
		}
		if err := display.Stop(); err != nil {
			logger.Warn().Err(err).Msg("progress display failed")
		}
	}

	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return fmt.Errorf("run stopped: %w", runErr)
	}

	entries := report.Build(state, report.Options{OmitNotFound: cfg.OmitNotFound})
	if !interrupted {
		if err := report.WriteFile(cfg.OutputFile, entries); err != nil {
			return err
		}
		logger.Info().Ctx(ctx).Str("path", cfg.OutputFile).Int("entries", len(entries)).Msg("wrote ranking")
	}

	if cmd.flags.JSON {
		if err := writeJSON(c, newRunResult(cfg, summary, entries, interrupted)); err != nil {
			return err
		}
	} else {
		printSummary(c.Root().Writer, cfg, summary, entries, interrupted)
	}

	if interrupted {
		return cli.Exit("", 130)
	}
	return nil
}

func (cmd *RunCmd) showProgress(mode string) bool {
	switch mode {
	case config.ProgressAlways:
		return true
	case config.ProgressNever:
		return false
	}
	return !cmd.flags.JSON && isTerminal(os.Stderr) && isTerminal(os.Stdin)
}

type runResult struct {
	Output      string          `json:"output,omitempty"`
	Interrupted bool            `json:"interrupted"`
	Entries     int             `json:"entries"`
	Summary     enrich.Summary  `json:"summary"`
	Failures    []failureResult `json:"failures,omitempty"`
}

type failureResult struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func newRunResult(cfg *config.Config, summary enrich.Summary, entries []report.Entry, interrupted bool) runResult {
	res := runResult{
		Interrupted: interrupted,
		Entries:     len(entries),
		Summary:     summary,
	}
	if !interrupted {
		res.Output = cfg.OutputFile
	}
	for _, f := range summary.Failures() {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		res.Failures = append(res.Failures, failureResult{ID: f.ID, Error: msg})
	}
	return res
}

func printSummary(w io.Writer, cfg *config.Config, summary enrich.Summary, entries []report.Entry, interrupted bool) {
	count := func(n int) string { return humanize.Comma(int64(n)) }

	_, _ = fmt.Fprintln(w)
	switch {
	case interrupted:
		_, _ = fmt.Fprintln(w, styles.TextWarning.Render("Stopped. Progress is saved, run again to continue."))
	default:
		_, _ = fmt.Fprintln(w, styles.TextSuccess.Render(fmt.Sprintf("%s Ranked %s comments into %s",
			styles.IconPass, count(len(entries)), cfg.OutputFile)))
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, styles.KeyValue("comments", fmt.Sprintf("%s (%s unique)", count(summary.Total), count(summary.Unique))))
	_, _ = fmt.Fprintln(w, styles.KeyValue("cached", count(summary.Cached)))
	_, _ = fmt.Fprintln(w, styles.KeyValue("fetched", count(summary.Fetched)))
	_, _ = fmt.Fprintln(w, styles.KeyValue("not found", count(summary.NotFound)))
	if summary.Skipped > 0 {
		_, _ = fmt.Fprintln(w, styles.KeyValue("skipped", styles.TextWarning.Render(count(summary.Skipped))))
	}
	if summary.Pending > 0 {
		_, _ = fmt.Fprintln(w, styles.KeyValue("remaining", count(summary.Pending)))
	}

	if len(entries) > 0 && !interrupted {
		top := entries[0]
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextPrimaryBold.Render("Most liked:"),
			styles.TextMuted.Render(fmt.Sprintf("%s likes", count(int(top.LikeCount)))))
		_, _ = fmt.Fprintln(w, truncate(top.Comment, 200))
	}

	if summary.Skipped > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.TextMuted.Render("Skipped comments were not cached and will be retried on the next run."))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
