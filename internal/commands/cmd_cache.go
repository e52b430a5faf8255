package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/commentrank/internal/core/logging"
	"github.com/hay-kot/commentrank/internal/core/styles"
	"github.com/hay-kot/commentrank/internal/store/cachelog"
)

type CacheCmd struct {
	flags *Flags
}

func NewCacheCmd(flags *Flags) *CacheCmd {
	return &CacheCmd{flags: flags}
}

func (cmd *CacheCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "cache",
		Usage:     "Inspect and maintain the cache log",
		UsageText: "commentrank cache <command> [options]",
		Commands: []*cli.Command{
			{
				Name:      "stats",
				Usage:     "Show what the cache log holds",
				UsageText: "commentrank cache stats [options]",
				Action:    cmd.stats,
			},
			{
				Name:      "compact",
				Usage:     "Rewrite the cache log with one line per comment",
				UsageText: "commentrank cache compact [options]",
				Description: `Drops malformed lines and lines superseded by a later record for the same
comment. The log is rewritten through a temporary file, so an interrupted
compaction leaves the original log in place.`,
				Action: cmd.compact,
			},
		},
	})
	return app
}

func (cmd *CacheCmd) store(ctx context.Context, c *cli.Command) (*cachelog.Store, error) {
	if err := cmd.flags.LoadConfig(ctx, c); err != nil {
		return nil, err
	}
	return cachelog.New(cmd.flags.Config.CacheFile, logging.Component("cache")), nil
}

func (cmd *CacheCmd) stats(ctx context.Context, c *cli.Command) error {
	store, err := cmd.store(ctx, c)
	if err != nil {
		return err
	}

	_, report := store.Load(ctx)
	if report.Err != nil {
		return fmt.Errorf("read cache %s: %w", report.Path, report.Err)
	}

	if cmd.flags.JSON {
		return writeJSON(c, report)
	}

	printReport(c.Root().Writer, "Cache", report)
	return nil
}

func (cmd *CacheCmd) compact(ctx context.Context, c *cli.Command) error {
	store, err := cmd.store(ctx, c)
	if err != nil {
		return err
	}

	report, err := store.Compact(ctx)
	if err != nil {
		return fmt.Errorf("compact cache: %w", err)
	}

	if cmd.flags.JSON {
		return writeJSON(c, report)
	}

	dropped := report.Malformed + report.Duplicates
	printReport(c.Root().Writer, "Compacted", report)
	_, _ = fmt.Fprintln(c.Root().Writer)
	_, _ = fmt.Fprintf(c.Root().Writer, "%s dropped %s line(s)\n",
		styles.TextSuccess.Render(styles.IconPass), humanize.Comma(int64(dropped)))
	return nil
}

func printReport(w io.Writer, title string, r cachelog.LoadReport) {
	count := func(n int) string { return humanize.Comma(int64(n)) }

	_, _ = fmt.Fprintln(w, styles.TextPrimaryBold.Render(title)+" "+styles.TextMuted.Render(r.Path))
	if !r.Exists {
		_, _ = fmt.Fprintln(w, styles.TextMuted.Render("  no cache yet"))
		return
	}
	_, _ = fmt.Fprintln(w, styles.KeyValue("  records", count(r.Records)))
	_, _ = fmt.Fprintln(w, styles.KeyValue("  not found", count(r.NotFound)))
	_, _ = fmt.Fprintln(w, styles.KeyValue("  lines", count(r.Lines)))
	if r.Malformed > 0 {
		_, _ = fmt.Fprintln(w, styles.KeyValue("  malformed", styles.TextWarning.Render(count(r.Malformed))))
	}
	if r.Duplicates > 0 {
		_, _ = fmt.Fprintln(w, styles.KeyValue("  superseded", count(r.Duplicates)))
	}
}
