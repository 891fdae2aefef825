package forum

import (
	"slices"
	"strconv"
)

// RemoteThread is a forum thread as reported by the gateway.
type RemoteThread struct {
	ID       string
	Name     string
	ParentID string
	Archived bool
	Locked   bool
}

// StarterMessage is the first message of a thread: the rendered task body and
// the custom ids of the controls attached to it.
type StarterMessage struct {
	Content    string
	ControlIDs []string
}

// ControlStyle selects how a control is drawn.
type ControlStyle int

const (
	StylePrimary ControlStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Control describes one interactive element attached to a starter message.
// IDs are stable across passes so handlers survive restarts.
type Control struct {
	ID    string       `json:"id"`
	Label string       `json:"label"`
	Style ControlStyle `json:"style"`
}

// Control actions.
const (
	ActionComplete   = "complete"
	ActionEdit       = "edit"
	ActionAddSubtask = "add-subtask"
	ActionToggleSub  = "toggle"
)

const (
	controlIDPrefix   = "task"
	maxControls       = 25
	subtaskControlCap = maxControls - 3
)

// ControlID builds the custom id for an action on a task, optionally scoped to
// a subtask.
func ControlID(action, taskKey string, subtaskID ...int) string {
	id := controlIDPrefix + ":" + action + ":" + taskKey
	if len(subtaskID) > 0 {
		id += ":" + strconv.Itoa(subtaskID[0])
	}
	return id
}

// ControlsFor returns the control set a task's starter message carries: the
// task-level actions followed by one toggle per subtask. Subtask toggles are
// capped so the set fits in a single message.
func ControlsFor(taskKey string, subtasks []Subtask) []Control {
	controls := []Control{
		{ID: ControlID(ActionComplete, taskKey), Label: "Complete", Style: StyleSuccess},
		{ID: ControlID(ActionEdit, taskKey), Label: "Edit", Style: StylePrimary},
		{ID: ControlID(ActionAddSubtask, taskKey), Label: "Add sub-task", Style: StyleSecondary},
	}

	numbers := SubtaskNumbers(subtasks)
	for i, st := range subtasks {
		if i >= subtaskControlCap {
			break
		}
		n := numbers[i]
		style := StyleSecondary
		if st.Completed {
			style = StyleSuccess
		}
		controls = append(controls, Control{
			ID:    ControlID(ActionToggleSub, taskKey, n),
			Label: "#" + strconv.Itoa(n),
			Style: style,
		})
	}

	return controls
}

// ControlIDs extracts the custom ids of a control set.
func ControlIDs(controls []Control) []string {
	ids := make([]string, 0, len(controls))
	for _, c := range controls {
		ids = append(ids, c.ID)
	}
	return ids
}

// SameControlIDs reports whether two id lists hold the same set of ids.
func SameControlIDs(a, b []string) bool {
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(slices.Compact(as), slices.Compact(bs))
}
