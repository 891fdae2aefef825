package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// TaskBackfiller lists tasks and assigns missing UUIDs.
type TaskBackfiller interface {
	ListAll(ctx context.Context) ([]forum.Task, error)
	BackfillUUIDs(ctx context.Context) (int, error)
}

// TasksCheck reports tasks whose key is not a UUID. Such tasks are mapped under
// their legacy id or name, which breaks when the task is renamed.
type TasksCheck struct {
	tasks   TaskBackfiller
	autofix bool
}

// NewTasksCheck creates a new tasks check. With autofix, missing UUIDs are
// assigned.
func NewTasksCheck(tasks TaskBackfiller, autofix bool) *TasksCheck {
	return &TasksCheck{tasks: tasks, autofix: autofix}
}

func (c *TasksCheck) Name() string {
	return "Tasks"
}

func (c *TasksCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	tasks, err := c.tasks.ListAll(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "task store",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	open := 0
	missing := 0
	for _, t := range tasks {
		if !t.Status.IsTerminal() {
			open++
		}
		if !t.HasCanonicalKey() {
			missing++
		}
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "task store",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d tasks, %d open", len(tasks), open),
	})

	if missing == 0 {
		return result
	}

	if !c.autofix {
		result.Items = append(result.Items, CheckItem{
			Label:   "uuids",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d tasks without a uuid", missing),
			Fixable: true,
		})
		return result
	}

	n, err := c.tasks.BackfillUUIDs(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "uuids",
			Status: StatusFail,
			Detail: fmt.Sprintf("backfill failed: %v", err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "uuids",
		Status: StatusPass,
		Detail: fmt.Sprintf("assigned %d uuids", n),
	})
	return result
}
