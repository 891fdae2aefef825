package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/logging"
	"github.com/colonyops/forumsync/internal/core/styles"
	"github.com/colonyops/forumsync/internal/core/validate"
	"github.com/colonyops/forumsync/internal/forumsync"
	"github.com/colonyops/forumsync/pkg/iojson"
)

var (
	knownStatuses   = []forum.Status{forum.StatusNotStarted, forum.StatusInProgress, forum.StatusBlocked, forum.StatusComplete}
	knownPriorities = []forum.Priority{forum.PriorityImportant, forum.PriorityModeratelyImportant, forum.PriorityNotImportant}
)

// TaskCmd implements the forumsync task command group.
type TaskCmd struct {
	flags *Flags
	app   *forumsync.App

	// add flags
	addStatus      string
	addPriority    string
	addOwner       string
	addDeadline    string
	addDescription string
	addURL         string

	// list flags
	listAll  bool
	listJSON bool

	// status flags
	statusValue string

	// subtask flags
	subtaskID   int
	subtaskDone bool
	subtaskDesc string

	// describe flags
	describeThread string

	importReader iojson.FileReader[[]forum.Task]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *forumsync.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage the tasks mirrored into the forum",
		Description: `Task commands edit the local task store. Changes reach Discord on the
next sync pass.

Examples:
  forumsync task add "Write release notes" --priority Important
  forumsync task ls
  forumsync task done <key>
  forumsync task import -f tasks.yaml`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.listCmd(),
			cmd.statusCmd(),
			cmd.doneCmd(),
			cmd.subtaskCmd(),
			cmd.describeCmd(),
			cmd.removeCmd(),
			cmd.importCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "forumsync task add <name> [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "initial status",
				Value:       string(forum.StatusNotStarted),
				Destination: &cmd.addStatus,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (Important, Moderately Important, Not Important)",
				Destination: &cmd.addPriority,
			},
			&cli.StringFlag{
				Name:        "owner",
				Usage:       "person responsible for the task",
				Destination: &cmd.addOwner,
			},
			&cli.StringFlag{
				Name:        "deadline",
				Usage:       "free-form deadline, e.g. 2026-11-01",
				Destination: &cmd.addDeadline,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &cmd.addDescription,
			},
			&cli.StringFlag{
				Name:        "url",
				Usage:       "reference link",
				Destination: &cmd.addURL,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "forumsync task ls [--all] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include completed tasks",
				Destination: &cmd.listAll,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print tasks as JSON lines",
				Destination: &cmd.listJSON,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Change a task's status",
		UsageText: "forumsync task status <key> --set <status>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "set",
				Usage:       "new status",
				Required:    true,
				Destination: &cmd.statusValue,
			},
		},
		ShellComplete: TaskKeyCompleter(cmd.app),
		Action:        cmd.runStatus,
	}
}

func (cmd *TaskCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a task complete",
		UsageText: "forumsync task done <key>",
		Description: `Marks a task complete. Its thread is deleted on the next sync, or
archived and locked when the bot may not delete it.`,
		ShellComplete: TaskKeyCompleter(cmd.app),
		Action:        cmd.runDone,
	}
}

func (cmd *TaskCmd) subtaskCmd() *cli.Command {
	return &cli.Command{
		Name:      "subtask",
		Usage:     "Add or update a subtask",
		UsageText: "forumsync task subtask <key> <name> [--id N] [--done]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "id",
				Usage:       "subtask id to replace (a new id is assigned when omitted)",
				Destination: &cmd.subtaskID,
			},
			&cli.BoolFlag{
				Name:        "done",
				Usage:       "mark the subtask completed",
				Destination: &cmd.subtaskDone,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "subtask description",
				Destination: &cmd.subtaskDesc,
			},
		},
		ShellComplete: TaskKeyCompleter(cmd.app),
		Action:        cmd.runSubtask,
	}
}

func (cmd *TaskCmd) describeCmd() *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Replace a task's description",
		UsageText: "forumsync task describe <key> <description>\n   forumsync task describe --thread <id> <description>",
		Description: `Replaces the description of a task. With --thread the task is looked up
through the forum mapping, so a thread id copied from Discord is enough.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "thread",
				Usage:       "forum thread id of the task",
				Destination: &cmd.describeThread,
			},
		},
		ShellComplete: TaskKeyCompleter(cmd.app),
		Action:        cmd.runDescribe,
	}
}

func (cmd *TaskCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task",
		UsageText: "forumsync task rm <key>",
		Description: `Deletes a task and its subtasks. The linked thread is removed on the
next sync.`,
		ShellComplete: TaskKeyCompleter(cmd.app),
		Action:        cmd.runRemove,
	}
}

func (cmd *TaskCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import tasks from a YAML or JSON list",
		UsageText: "forumsync task import [-f file]",
		Description: `Imports a list of tasks in one transaction. Tasks keep the uuid and id
given in the file; run backfill-uuids afterwards to assign missing uuids.`,
		Flags:  []cli.Flag{cmd.importReader.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	name := strings.TrimSpace(c.Args().First())
	if err := validate.TaskName(name); err != nil {
		return fmt.Errorf("task %w", err)
	}

	status, err := parseStatus(cmd.addStatus)
	if err != nil {
		return err
	}
	priority, err := parsePriority(cmd.addPriority)
	if err != nil {
		return err
	}

	order, err := cmd.app.Tasks.NextOrder(ctx)
	if err != nil {
		return err
	}

	task, err := cmd.app.Tasks.Create(ctx, forum.Task{
		Name:        name,
		Status:      status,
		Priority:    priority,
		Owner:       cmd.addOwner,
		Deadline:    cmd.addDeadline,
		Description: cmd.addDescription,
		URL:         cmd.addURL,
		Order:       order,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	_, err = fmt.Fprintln(c.Root().Writer, task.Key())
	return err
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.app.Tasks.ListAll(ctx)
	if err != nil {
		return err
	}
	slices.SortStableFunc(tasks, forum.Compare)

	if !cmd.listAll {
		tasks = slices.DeleteFunc(tasks, func(t forum.Task) bool { return t.Status.IsTerminal() })
	}

	w := c.Root().Writer
	if cmd.listJSON {
		for _, t := range tasks {
			if err := iojson.WriteLine(w, t); err != nil {
				return err
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, styles.TextMutedStyle.Render("no tasks"))
		return err
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		progress := ""
		if len(t.Subtasks) > 0 {
			progress = fmt.Sprintf("%d/%d", t.CompletedSubtasks(), len(t.Subtasks))
		}
		rows = append(rows, []string{t.Key(), t.Priority.Marker(), t.Name, string(t.Status), t.Owner, progress})
	}

	_, err = fmt.Fprintln(w, styles.Table([]string{"KEY", "", "NAME", "STATUS", "OWNER", "SUBTASKS"}, rows))
	return err
}

func (cmd *TaskCmd) runStatus(ctx context.Context, c *cli.Command) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}
	status, err := parseStatus(cmd.statusValue)
	if err != nil {
		return err
	}
	return cmd.app.Tasks.SetStatus(ctx, key, status)
}

func (cmd *TaskCmd) runDone(ctx context.Context, c *cli.Command) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}
	return cmd.app.Tasks.SetStatus(ctx, key, forum.StatusComplete)
}

func (cmd *TaskCmd) runSubtask(ctx context.Context, c *cli.Command) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.Args().Get(1))
	if name == "" {
		return fmt.Errorf("subtask name is required")
	}

	return cmd.app.Tasks.UpsertSubtask(ctx, key, forum.Subtask{
		ID:          cmd.subtaskID,
		Name:        name,
		Description: cmd.subtaskDesc,
		Completed:   cmd.subtaskDone,
	})
}

func (cmd *TaskCmd) runDescribe(ctx context.Context, c *cli.Command) error {
	if cmd.describeThread != "" {
		links := cmd.app.Links(logging.Component("links"))
		return links.UpdateDescriptionForThread(ctx, cmd.describeThread, strings.TrimSpace(c.Args().First()))
	}

	key, err := requireKey(c)
	if err != nil {
		return err
	}
	return cmd.app.Tasks.UpdateDescriptionByKey(ctx, key, strings.TrimSpace(c.Args().Get(1)))
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}

	task, err := cmd.app.Tasks.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if err := cmd.app.Tasks.Delete(ctx, key); err != nil {
		return err
	}
	return cmd.app.Controls.Forget(ctx, task.Key())
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.importReader.Read()
	if err != nil {
		return err
	}

	checks := make([]error, 0, 2*len(tasks))
	for i, t := range tasks {
		checks = append(checks,
			validate.TaskNameField(fmt.Sprintf("tasks[%d].name", i), t.Name),
			validate.TaskUUIDField(fmt.Sprintf("tasks[%d].uuid", i), t.UUID),
		)
	}
	if err := criterio.ValidateStruct(checks...); err != nil {
		return fmt.Errorf("invalid import: %w", err)
	}

	if err := cmd.app.Tasks.Import(ctx, tasks); err != nil {
		return fmt.Errorf("import tasks: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "imported %d tasks\n", len(tasks))
	return err
}

func requireKey(c *cli.Command) (string, error) {
	key := c.Args().First()
	if key == "" {
		return "", fmt.Errorf("task key is required")
	}
	return key, nil
}

func parseStatus(s string) (forum.Status, error) {
	for _, st := range knownStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q: must be one of %s", s, joinQuoted(knownStatuses))
}

func parsePriority(s string) (forum.Priority, error) {
	if s == "" {
		return "", nil
	}
	for _, p := range knownPriorities {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q: must be one of %s", s, joinQuoted(knownPriorities))
}

func joinQuoted[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
