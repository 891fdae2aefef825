package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/forumsync"
)

type BackfillCmd struct {
	flags *Flags
	app   *forumsync.App
}

// NewBackfillCmd creates a new backfill-uuids command.
func NewBackfillCmd(flags *Flags, app *forumsync.App) *BackfillCmd {
	return &BackfillCmd{flags: flags, app: app}
}

// Register adds the backfill-uuids command to the application.
func (cmd *BackfillCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "backfill-uuids",
		Usage:     "Assign a uuid to every task without one",
		UsageText: "forumsync backfill-uuids",
		Description: `Assigns a uuid to tasks that are still identified by a legacy id or
their name. The next sync moves their thread links to the new key without
creating duplicate threads.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *BackfillCmd) run(ctx context.Context, c *cli.Command) error {
	n, err := cmd.app.Tasks.BackfillUUIDs(ctx)
	if err != nil {
		return fmt.Errorf("backfill uuids: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "assigned %d uuids\n", n)
	return err
}
