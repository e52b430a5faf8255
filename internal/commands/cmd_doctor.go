package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/commentrank/internal/core/doctor"
	"github.com/hay-kot/commentrank/internal/core/styles"
)

type DoctorCmd struct {
	flags *Flags
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Check that everything a run needs is in place",
		UsageText:   "commentrank doctor [options]",
		Description: "Checks the configuration, API key, Takeout inputs, cache log and output location without calling the API.",
		Action:      cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.LoadConfig(ctx, c); err != nil {
		return err
	}
	cfg := cmd.flags.Config

	report := doctor.Run(ctx, doctor.Checks(cfg, cmd.flags.ConfigPath))

	if cmd.flags.JSON {
		if err := writeJSON(c, report); err != nil {
			return err
		}
	} else {
		cmd.outputText(c.Root().ErrWriter, report)
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(w io.Writer, report doctor.Report) {
	divider := styles.TextMuted.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBold.Render("commentrank doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range report.Results {
		_, _ = fmt.Fprintln(w, styles.TextBold.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.TextMuted.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.TextSuccess.Render(styles.IconPass)
			case doctor.StatusWarn:
				icon = styles.TextWarning.Render(styles.IconWarn)
			case doctor.StatusFail:
				icon = styles.TextError.Render(styles.IconFail)
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	summary := fmt.Sprintf("%s  %s  %s",
		styles.TextSuccess.Render(fmt.Sprintf("%d passed", report.Passed)),
		styles.TextWarning.Render(fmt.Sprintf("%d warnings", report.Warned)),
		styles.TextError.Render(fmt.Sprintf("%d failed", report.Failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if report.Fixable > 0 {
		_, _ = fmt.Fprintln(w)
		hint := styles.TextMuted.Render(fmt.Sprintf("%d issue(s) can be fixed with 'commentrank init' or 'commentrank cache compact'", report.Fixable))
		_, _ = fmt.Fprintln(w, hint)
	}
}
