package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/forumsync"
)

// TaskKeyCompleter returns a ShellCompleteFunc that suggests the keys of open
// tasks as positional completions. Set this as the ShellComplete field on any
// cli.Command that accepts a task key as its first argument.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskKeyCompleter(app *forumsync.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		tasks, err := app.Tasks.ListAll(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range tasks {
			if t.Status.IsTerminal() {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.Key(), t.Name)
		}
	}
}
