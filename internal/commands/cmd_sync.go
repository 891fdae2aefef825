package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/core/logging"
	"github.com/colonyops/forumsync/internal/forumsync"
	"github.com/colonyops/forumsync/pkg/iojson"
)

type SyncCmd struct {
	flags  *Flags
	app    *forumsync.App
	format string
}

// NewSyncCmd creates a new sync command.
func NewSyncCmd(flags *Flags, app *forumsync.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application.
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Run a single reconciliation pass",
		UsageText: "forumsync sync [--format text|json]",
		Description: `Brings the forum channel in line with the task store once and exits.

Open tasks get a thread, completed tasks lose theirs, and drifted titles or
starter messages are corrected. Running it twice in a row makes no changes
the second time.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	s, err := newSession(cmd.app.Config)
	if err != nil {
		return err
	}

	gw := newGateway(cmd.app.Config, s, nil)
	report, err := cmd.app.Reconciler(gw, logging.Component("reconciler")).Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if cmd.format == "json" {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, report)
	}

	return writeReport(c.Root().Writer, report)
}

func writeReport(w io.Writer, r forumsync.Report) error {
	_, err := fmt.Fprintf(w,
		"pass %s: %d tasks, %d created, %d renamed, %d edited, %d posted, %d removed, %d archived, %d migrated, %d orphaned, %d skipped, %d failed (%s)\n",
		r.PassID, r.Tasks, r.Created, r.Renamed, r.Edited, r.Posted, r.Removed, r.Archived,
		r.Migrated, r.Orphaned, r.Skipped, r.Failed, r.Duration.Round(time.Millisecond),
	)
	return err
}
