package forumsync

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/colonyops/forumsync/internal/core/forum"
)

const (
	progressCells = 10

	// Discord rejects thread names and message bodies above these lengths.
	maxThreadName = 100
	maxContent    = 2000
	ellipsis      = "…"
)

// ThreadName derives a thread title: the priority marker followed by the task
// name.
func ThreadName(t forum.Task) string {
	return truncate(t.Priority.Marker()+" "+t.Name, maxThreadName)
}

// ThreadContent renders the starter message body for a task. Descriptions are
// rendered verbatim, including offloaded paste links.
func ThreadContent(t forum.Task) string {
	owner := t.Owner
	if owner == "" {
		owner = "Unassigned"
	}
	deadline := t.Deadline
	if deadline == "" {
		deadline = "None"
	}
	description := t.Description
	if description == "" {
		description = "*No description*"
	}

	lines := []string{
		"**Status:** " + string(t.Status),
		"**Priority:** " + t.Priority.Marker() + " " + string(t.Priority),
		"**Owner:** " + owner,
		"**Deadline:** " + deadline,
		"",
		"**Description:** " + description,
	}
	if t.URL != "" {
		lines = append(lines, "**URL:** "+t.URL)
	}

	if len(t.Subtasks) > 0 {
		lines = append(lines,
			"",
			"**Progress:** "+ProgressBar(t.CompletedSubtasks(), len(t.Subtasks)),
			"",
			"**Sub-tasks:**",
		)
		numbers := forum.SubtaskNumbers(t.Subtasks)
		for i, st := range t.Subtasks {
			lines = append(lines, subtaskLines(numbers[i], st)...)
		}
	}

	return truncate(strings.Join(lines, "\n"), maxContent)
}

// truncate cuts s to at most limit runes, ending in an ellipsis when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + ellipsis
}

func subtaskLines(n int, st forum.Subtask) []string {
	check := "☐"
	if st.Completed {
		check = "✅"
	}
	name := st.Name
	if name == "" {
		name = "Unnamed subtask"
	}

	out := []string{check + " " + strconv.Itoa(n) + ". " + name}
	if st.Description != "" {
		out = append(out, "   📝 "+st.Description)
	}
	if st.URL != "" {
		out = append(out, "   🔗 "+st.URL)
	}
	return out
}

// ProgressBar renders done/total as a fixed-width bar with a count and a
// rounded-down percentage.
func ProgressBar(done, total int) string {
	if total <= 0 {
		return strings.Repeat("▱", progressCells) + " 0/0 (0%)"
	}
	done = min(max(done, 0), total)
	filled := done * progressCells / total
	pct := done * 100 / total
	return fmt.Sprintf("%s%s %d/%d (%d%%)",
		strings.Repeat("▰", filled),
		strings.Repeat("▱", progressCells-filled),
		done, total, pct,
	)
}
