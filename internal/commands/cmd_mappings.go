package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/core/styles"
	"github.com/colonyops/forumsync/internal/forumsync"
	"github.com/colonyops/forumsync/pkg/iojson"
)

// MappingsCmd implements the forumsync mappings command group.
type MappingsCmd struct {
	flags *Flags
	app   *forumsync.App

	match string
	json  bool
}

// mappingRow is one task/thread link as printed by mappings ls.
type mappingRow struct {
	TaskKey  string `json:"task_key"`
	ThreadID string `json:"thread_id"`
	TaskName string `json:"task_name,omitempty"`
}

// NewMappingsCmd creates a new mappings command.
func NewMappingsCmd(flags *Flags, app *forumsync.App) *MappingsCmd {
	return &MappingsCmd{flags: flags, app: app}
}

// Register adds the mappings command to the application.
func (cmd *MappingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "mappings",
		Usage: "Inspect task/thread links",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "List linked threads",
				UsageText: "forumsync mappings ls [--match <glob>] [--json]",
				Description: `Lists every task key with the thread it is linked to.

--match filters by a glob over the task key or the task name.

Examples:
  forumsync mappings ls
  forumsync mappings ls --match "Release*"`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "glob matched against task keys and names",
						Destination: &cmd.match,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "print links as JSON lines",
						Destination: &cmd.json,
					},
				},
				Action: cmd.runList,
			},
		},
	})

	return app
}

func (cmd *MappingsCmd) runList(ctx context.Context, c *cli.Command) error {
	if cmd.match != "" && !doublestar.ValidatePattern(cmd.match) {
		return fmt.Errorf("invalid glob %q", cmd.match)
	}

	m, err := cmd.app.Mappings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load mappings: %w", err)
	}

	tasks, err := cmd.app.Tasks.ListAll(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		names[t.Key()] = t.Name
	}

	var rows []mappingRow
	for _, key := range slices.Sorted(maps.Keys(m.TaskToThread)) {
		row := mappingRow{TaskKey: key, ThreadID: m.TaskToThread[key], TaskName: names[key]}
		if cmd.match != "" && !matchesAny(cmd.match, row.TaskKey, row.TaskName) {
			continue
		}
		rows = append(rows, row)
	}

	w := c.Root().Writer
	if cmd.json {
		for _, row := range rows {
			if err := iojson.WriteLine(w, row); err != nil {
				return err
			}
		}
		return nil
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, styles.TextMutedStyle.Render("no linked threads"))
		return err
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		name := row.TaskName
		if name == "" {
			name = styles.TextWarningStyle.Render("(unknown task)")
		}
		table = append(table, []string{row.TaskKey, row.ThreadID, name})
	}

	_, err = fmt.Fprintln(w, styles.Table([]string{"TASK KEY", "THREAD", "NAME"}, table))
	return err
}

func matchesAny(pattern string, values ...string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if ok, _ := doublestar.Match(pattern, v); ok {
			return true
		}
	}
	return false
}
