package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewApp builds the command tree. Before and After hooks are left to the
// caller so docs can be generated without touching the environment.
func NewApp(flags *Flags, version string) *cli.Command {
	app := &cli.Command{
		Name:      "commentrank",
		Usage:     "Rank your YouTube comments by likes",
		UsageText: "commentrank [global options] [command [command options]]",
		Description: `commentrank reads the comment ids in your Google Takeout export, asks the
YouTube Data API how many likes each comment has, and writes them to a JSON
file ordered from most to least liked.

Results are cached as they arrive, so a run can be stopped at any time (or cut
short by the daily API quota) and resumed later without repeating work.

Run 'commentrank init' to create a config file, 'commentrank doctor' to check
your setup, then 'commentrank' to start.`,
		Version: version,
		Flags:   flags.GlobalFlags(),
	}

	runCmd := NewRunCmd(flags)

	app = runCmd.Register(app)
	app = NewDoctorCmd(flags).Register(app)
	app = NewInitCmd(flags).Register(app)
	app = NewCacheCmd(flags).Register(app)

	// Run is the default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'commentrank --help' for usage", c.Args().First())
		}
		return runCmd.Run(ctx, c)
	}

	return app
}
