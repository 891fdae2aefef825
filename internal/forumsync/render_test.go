package forumsync

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/forumsync/internal/core/forum"
)

func TestThreadName(t *testing.T) {
	tests := []struct {
		priority forum.Priority
		want     string
	}{
		{forum.PriorityImportant, "🔴 Deploy"},
		{forum.PriorityModeratelyImportant, "🟠 Deploy"},
		{forum.PriorityNotImportant, "⚪ Deploy"},
		{"", "⚪ Deploy"},
		{"Urgent-ish", "⚪ Deploy"},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, ThreadName(forum.Task{Name: "Deploy", Priority: tt.priority}))
		})
	}
}

func TestThreadContent(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		got := ThreadContent(forum.Task{Name: "Setup", Status: forum.StatusNotStarted})
		want := "**Status:** Not Started\n" +
			"**Priority:** ⚪ \n" +
			"**Owner:** Unassigned\n" +
			"**Deadline:** None\n" +
			"\n" +
			"**Description:** *No description*"
		assert.Equal(t, want, got)
	})

	t.Run("full", func(t *testing.T) {
		task := forum.Task{
			Name:        "Deploy",
			Status:      forum.StatusInProgress,
			Priority:    forum.PriorityImportant,
			Owner:       "sam",
			Deadline:    "2026-11-01",
			Description: "Roll out v2",
			URL:         "https://example.com/deploy",
			Subtasks: []forum.Subtask{
				{ID: 4, Name: "build", Completed: true, Description: "ci green", URL: "https://ci.example.com/4"},
				{Name: ""},
				{Name: "announce"},
			},
		}

		want := "**Status:** In Progress\n" +
			"**Priority:** 🔴 Important\n" +
			"**Owner:** sam\n" +
			"**Deadline:** 2026-11-01\n" +
			"\n" +
			"**Description:** Roll out v2\n" +
			"**URL:** https://example.com/deploy\n" +
			"\n" +
			"**Progress:** ▰▰▰▱▱▱▱▱▱▱ 1/3 (33%)\n" +
			"\n" +
			"**Sub-tasks:**\n" +
			"✅ 4. build\n" +
			"   📝 ci green\n" +
			"   🔗 https://ci.example.com/4\n" +
			"☐ 2. Unnamed subtask\n" +
			"☐ 3. announce"
		assert.Equal(t, want, ThreadContent(task))
	})
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        string
	}{
		{0, 0, "▱▱▱▱▱▱▱▱▱▱ 0/0 (0%)"},
		{0, 4, "▱▱▱▱▱▱▱▱▱▱ 0/4 (0%)"},
		{1, 4, "▰▰▱▱▱▱▱▱▱▱ 1/4 (25%)"},
		{2, 3, "▰▰▰▰▰▰▱▱▱▱ 2/3 (66%)"},
		{4, 4, "▰▰▰▰▰▰▰▰▰▰ 4/4 (100%)"},
		{9, 4, "▰▰▰▰▰▰▰▰▰▰ 4/4 (100%)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressBar(tt.done, tt.total))
	}
}

func TestRender_Truncates(t *testing.T) {
	long := strings.Repeat("é", 300)

	name := ThreadName(forum.Task{Name: long})
	assert.Equal(t, maxThreadName, utf8.RuneCountInString(name))
	assert.True(t, strings.HasSuffix(name, ellipsis))
	assert.True(t, strings.HasPrefix(name, forum.DefaultMarker+" "))

	content := ThreadContent(forum.Task{Name: "x", Description: strings.Repeat(long, 10)})
	assert.Equal(t, maxContent, utf8.RuneCountInString(content))
	assert.True(t, strings.HasSuffix(content, ellipsis))

	// Rendering a truncated task again is stable.
	assert.Equal(t, name, ThreadName(forum.Task{Name: long}))
}
