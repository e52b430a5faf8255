package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/commentrank/internal/core/config"
	"github.com/hay-kot/commentrank/internal/core/styles"
	"github.com/hay-kot/commentrank/internal/core/validate"
)

// runForm runs an interactive form.
// Package-level variable to allow test overrides.
var runForm = func(f *huh.Form) error { return f.Run() }

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a config file with an interactive wizard",
		UsageText: "commentrank init [options]",
		Description: `Asks for your API key and file locations and writes them to the config file
(see --config). Values given as flags or environment variables are used as the
defaults in the form.

Use --yes to write the current settings without prompts.
Use --force to overwrite an existing config file.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.LoadConfig(ctx, c); err != nil {
		return err
	}
	cfg := *cmd.flags.Config
	path := cmd.flags.ConfigPath
	w := c.Root().ErrWriter

	if cmd.flags.Console != nil {
		release := cmd.flags.Console.Hold()
		defer func() { _ = release() }()
	}

	if configExists(path) && !cmd.force {
		if cmd.yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", path)
		}

		var overwrite bool
		err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Config file already exists").
				Description(path + "\nOverwrite? (a backup will be created)").
				Value(&overwrite),
		)))
		if err != nil {
			return formErr(err)
		}
		if !overwrite {
			_, _ = fmt.Fprintln(w, styles.TextMuted.Render("Init cancelled"))
			return nil
		}
	}

	if !cmd.yes {
		if err := runForm(newConfigForm(&cfg)); err != nil {
			return formErr(err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid settings: %w", err)
		}
	}

	backup, err := backupConfig(path)
	if err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	if backup != "" {
		_, _ = fmt.Fprintf(w, "%s Backed up config to %s\n", styles.TextSuccess.Render(styles.IconPass), backup)
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s Created config %s\n", styles.TextSuccess.Render(styles.IconPass), path)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBold.Render("Next steps"))
	_, _ = fmt.Fprintln(w, "  1. Run 'commentrank doctor' to check your setup")
	_, _ = fmt.Fprintln(w, "  2. Run 'commentrank' to rank your comments")
	return nil
}

func newConfigForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Data API key").
				Description("Leave empty to use the YOUTUBE_V3_API_KEY environment variable").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIKey),
			huh.NewInput().
				Title("Takeout directory").
				Description("Folder holding your extracted Google Takeout export").
				Validate(validate.Directory).
				Value(&cfg.TakeoutDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cache file").
				Value(&cfg.CacheFile),
			huh.NewInput().
				Title("Output file").
				Value(&cfg.OutputFile),
			huh.NewConfirm().
				Title("Leave deleted comments out of the output?").
				Value(&cfg.OmitNotFound),
			huh.NewConfirm().
				Title("Retry deleted comments on every run?").
				Description("Costs one API call per deleted comment each run").
				Value(&cfg.RetryNotFound),
		),
	)
}

func formErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return cli.Exit("", 1)
	}
	return err
}

func configExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// backupConfig copies an existing config to <path>.bak. It returns an empty
// string when there was nothing to back up.
func backupConfig(path string) (string, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read existing config: %w", err)
	}

	backupPath := path + ".bak"
	if err := os.WriteFile(backupPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}
