package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// MappingCheck verifies that the stored task/thread mapping is a bijection and
// that every entry belongs to a known task.
type MappingCheck struct {
	mappings forum.MappingStore
	tasks    forum.TaskSource
	autofix  bool
}

// NewMappingCheck creates a new mapping check. With autofix, an inconsistent
// mapping is normalized and saved.
func NewMappingCheck(mappings forum.MappingStore, tasks forum.TaskSource, autofix bool) *MappingCheck {
	return &MappingCheck{mappings: mappings, tasks: tasks, autofix: autofix}
}

func (c *MappingCheck) Name() string {
	return "Mapping"
}

func (c *MappingCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	m, err := c.mappings.Load(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "mapping",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, c.consistency(ctx, &m))

	tasks, err := c.tasks.ListAll(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "links",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	known := map[string]bool{}
	for _, t := range tasks {
		known[t.Key()] = true
		for _, k := range t.LegacyKeys() {
			known[k] = true
		}
	}

	unknown := 0
	for key := range m.TaskToThread {
		if !known[key] {
			unknown++
		}
	}

	if unknown > 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "links",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%d threads linked to unknown tasks; removed by the next sync", unknown),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "links",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d linked threads", m.Len()),
		})
	}

	return result
}

func (c *MappingCheck) consistency(ctx context.Context, m *forum.Mapping) CheckItem {
	if m.IsBijection() {
		return CheckItem{Label: "bijection", Status: StatusPass}
	}

	if !c.autofix {
		return CheckItem{
			Label:   "bijection",
			Status:  StatusWarn,
			Detail:  "task and thread indexes disagree",
			Fixable: true,
		}
	}

	m.Normalize()
	if err := c.mappings.Save(ctx, *m); err != nil {
		return CheckItem{
			Label:  "bijection",
			Status: StatusFail,
			Detail: fmt.Sprintf("save normalized mapping: %v", err),
		}
	}
	return CheckItem{Label: "bijection", Status: StatusPass, Detail: "normalized"}
}
