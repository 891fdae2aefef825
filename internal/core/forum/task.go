// Package forum defines the domain types shared by the task store, the forum
// gateway and the reconciler: tasks, remote threads, the task/thread mapping
// and the collaborator interfaces that connect them.
package forum

import (
	"cmp"
	"strings"
)

// Status is the workflow state of a task. Unknown values are carried verbatim.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusComplete   Status = "Complete"
)

// IsTerminal reports whether the task has reached its final state. A terminal
// task must not have a visible thread.
func (s Status) IsTerminal() bool {
	return s == StatusComplete
}

// Priority is the importance label of a task.
type Priority string

const (
	PriorityImportant           Priority = "Important"
	PriorityModeratelyImportant Priority = "Moderately Important"
	PriorityNotImportant        Priority = "Not Important"
)

// DefaultMarker is used for priorities without a dedicated marker.
const DefaultMarker = "⚪"

var priorityMarkers = map[Priority]string{
	PriorityImportant:           "🔴",
	PriorityModeratelyImportant: "🟠",
	PriorityNotImportant:        "⚪",
}

// Marker returns the visual marker used to prefix thread names.
func (p Priority) Marker() string {
	if m, ok := priorityMarkers[p]; ok {
		return m
	}
	return DefaultMarker
}

// Markers returns every distinct marker a thread name may start with.
func Markers() []string {
	return []string{"🔴", "🟠", DefaultMarker}
}

// Subtask is a checklist entry owned by a task. ID is zero when the store never
// assigned one; SubtaskNumbers then picks a free number for it.
type Subtask struct {
	ID          int    `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// Task is the canonical record a forum thread mirrors.
type Task struct {
	UUID        string    `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	LegacyID    string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string    `json:"name" yaml:"name"`
	Status      Status    `json:"status" yaml:"status"`
	Priority    Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Owner       string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Deadline    string    `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Subtasks    []Subtask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Order       int       `json:"order" yaml:"order"`
}

// Key returns the identifier the mapping is indexed by: the UUID when present,
// otherwise the legacy id, otherwise the name.
func (t Task) Key() string {
	switch {
	case t.UUID != "":
		return t.UUID
	case t.LegacyID != "":
		return t.LegacyID
	default:
		return t.Name
	}
}

// HasCanonicalKey reports whether Key is backed by a UUID.
func (t Task) HasCanonicalKey() bool {
	return t.UUID != ""
}

// LegacyKeys returns the older identity forms, in probe order, that may still
// index a mapping entry for this task. Keys equal to Key are omitted.
func (t Task) LegacyKeys() []string {
	key := t.Key()
	var out []string
	for _, k := range []string{t.LegacyID, t.Name} {
		if k != "" && k != key {
			out = append(out, k)
		}
	}
	return out
}

// SubtaskNumbers returns a distinct number for each subtask, index-aligned with
// subtasks. An explicit ID is kept unless an earlier subtask already holds it.
// Subtasks without a usable ID start from their 1-based position and move up
// past any number that is explicitly owned or already handed out.
func SubtaskNumbers(subtasks []Subtask) []int {
	owned := make(map[int]bool, len(subtasks))
	for _, st := range subtasks {
		if st.ID > 0 {
			owned[st.ID] = true
		}
	}

	taken := make(map[int]bool, len(subtasks))
	out := make([]int, len(subtasks))
	for i, st := range subtasks {
		if st.ID > 0 && !taken[st.ID] {
			taken[st.ID] = true
			out[i] = st.ID
			continue
		}
		n := i + 1
		for taken[n] || owned[n] {
			n++
		}
		taken[n] = true
		out[i] = n
	}
	return out
}

// CompletedSubtasks returns how many subtasks are done.
func (t Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			n++
		}
	}
	return n
}

// Compare orders tasks by (Order, lowercase Name). Priority and status play no
// part so that thread creation order is stable across passes.
func Compare(a, b Task) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

// StripMarker removes a leading priority marker and its separating space from
// a thread name.
func StripMarker(name string) string {
	for _, m := range Markers() {
		if rest, ok := strings.CutPrefix(name, m+" "); ok {
			return rest
		}
	}
	return name
}
