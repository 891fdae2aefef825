package forumsync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/forum/forumtest"
)

const testForum = "9000"

var errTransient = errors.New("503 service unavailable")

type harness struct {
	tasks    *forumtest.TaskSource
	gw       *forumtest.Gateway
	mappings *forumtest.MappingStore
	controls *forumtest.ControlRegistry
	rec      *Reconciler
}

func newHarness(t *testing.T, m forum.Mapping, tasks ...forum.Task) *harness {
	t.Helper()

	h := &harness{
		tasks:    forumtest.NewTaskSource(tasks...),
		gw:       forumtest.NewGateway(),
		mappings: forumtest.NewMappingStore(m),
		controls: forumtest.NewControlRegistry(),
	}
	h.rec = NewReconciler(h.tasks, h.gw, h.mappings, h.controls, testForum, zerolog.Nop())
	return h
}

func (h *harness) run(t *testing.T) Report {
	t.Helper()
	report, err := h.rec.Run(context.Background())
	require.NoError(t, err)
	return report
}

// seedThread adds a thread whose name and starter message already match task.
func (h *harness) seedThread(id string, task forum.Task) {
	h.gw.AddThread(
		forum.RemoteThread{ID: id, Name: ThreadName(task), ParentID: testForum},
		&forum.StarterMessage{
			Content:    ThreadContent(task),
			ControlIDs: forum.ControlIDs(forum.ControlsFor(task.Key(), task.Subtasks)),
		},
	)
}

func linked(pairs ...string) forum.Mapping {
	m := forum.NewMapping()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Link(pairs[i], pairs[i+1])
	}
	return m
}

func TestReconciler_CreatesOnlyOpenTasks(t *testing.T) {
	setup := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted, Priority: forum.PriorityNotImportant, Order: 0}
	done := forum.Task{UUID: "u2", Name: "Done", Status: forum.StatusComplete, Order: 1}
	h := newHarness(t, forum.NewMapping(), setup, done)

	report := h.run(t)

	creates := h.gw.CallsFor(forumtest.OpCreate)
	require.Len(t, creates, 1)
	assert.Equal(t, "⚪ Setup", creates[0].Name)
	assert.Equal(t, "**Status:** Not Started\n"+
		"**Priority:** ⚪ Not Important\n"+
		"**Owner:** Unassigned\n"+
		"**Deadline:** None\n"+
		"\n"+
		"**Description:** *No description*", creates[0].Content)
	assert.Len(t, h.gw.Mutations(), 1)

	stored := h.mappings.Stored()
	threads := h.gw.Threads()
	require.Len(t, threads, 1)
	assert.Equal(t, map[string]string{"u1": threads[0].ID}, stored.TaskToThread)
	assert.Equal(t, map[string]string{threads[0].ID: "u1"}, stored.ThreadToTask)

	assert.Equal(t, 1, report.Created)
	assert.True(t, report.Saved)
	assert.NotEmpty(t, report.PassID)
}

func TestReconciler_SecondPassIsIdempotent(t *testing.T) {
	tasks := []forum.Task{
		{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted, Order: 0},
		{UUID: "u2", Name: "Deploy", Status: forum.StatusInProgress, Priority: forum.PriorityImportant, Order: 1,
			Subtasks: []forum.Subtask{{ID: 1, Name: "build", Completed: true}, {Name: "ship"}}},
		{UUID: "u3", Name: "Old", Status: forum.StatusComplete, Order: 2},
	}
	h := newHarness(t, forum.NewMapping(), tasks...)

	first := h.run(t)
	require.Equal(t, 2, first.Created)
	saves := h.mappings.Saves()
	h.gw.ResetCalls()

	second := h.run(t)

	assert.Empty(t, h.gw.Mutations())
	assert.Equal(t, saves, h.mappings.Saves(), "clean pass must not write the mapping")
	assert.False(t, second.Saved)
	assert.Zero(t, second.Mutations())
}

func TestReconciler_MappingIsBijection(t *testing.T) {
	h := newHarness(t, forum.NewMapping(),
		forum.Task{UUID: "u1", Name: "a", Status: forum.StatusNotStarted},
		forum.Task{UUID: "u2", Name: "b", Status: forum.StatusBlocked},
		forum.Task{UUID: "u3", Name: "c", Status: forum.StatusInProgress},
	)
	h.run(t)

	h.tasks.Update("u2", func(t *forum.Task) { t.Status = forum.StatusComplete })
	h.tasks.Remove("u3")
	h.run(t)

	stored := h.mappings.Stored()
	assert.True(t, stored.IsBijection())
	assert.Equal(t, 1, stored.Len())
	_, ok := stored.ThreadFor("u1")
	assert.True(t, ok)
}

func TestReconciler_RepairsHalfWrittenMapping(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "a", Status: forum.StatusNotStarted}
	m := forum.Mapping{
		TaskToThread: map[string]string{"u1": "500"},
		ThreadToTask: map[string]string{"500": "ghost", "501": "u1"},
	}
	h := newHarness(t, m, task)
	h.seedThread("500", task)

	h.run(t)

	stored := h.mappings.Stored()
	assert.Equal(t, map[string]string{"u1": "500"}, stored.TaskToThread)
	assert.Equal(t, map[string]string{"500": "u1"}, stored.ThreadToTask)
	assert.Empty(t, h.gw.Mutations())
}

func TestReconciler_MigratesLegacyKeys(t *testing.T) {
	tests := []struct {
		name      string
		legacyKey string
		task      forum.Task
	}{
		{
			name:      "legacy id",
			legacyKey: "7",
			task:      forum.Task{UUID: "u-7", LegacyID: "7", Name: "Write docs", Status: forum.StatusInProgress},
		},
		{
			name:      "name",
			legacyKey: "Write docs",
			task:      forum.Task{UUID: "u-7", LegacyID: "7", Name: "Write docs", Status: forum.StatusInProgress},
		},
		{
			name:      "name without uuid",
			legacyKey: "Write docs",
			task:      forum.Task{LegacyID: "7", Name: "Write docs", Status: forum.StatusInProgress},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, linked(tt.legacyKey, "800"), tt.task)
			h.seedThread("800", tt.task)

			report := h.run(t)

			key := tt.task.Key()
			stored := h.mappings.Stored()
			assert.Equal(t, map[string]string{key: "800"}, stored.TaskToThread)
			assert.Equal(t, map[string]string{"800": key}, stored.ThreadToTask)
			assert.Empty(t, h.gw.CallsFor(forumtest.OpCreate))
			assert.Empty(t, h.gw.CallsFor(forumtest.OpDelete))
			assert.Equal(t, 1, report.Migrated)
			assert.Zero(t, report.Orphaned)
		})
	}
}

func TestReconciler_RemovesCompletedTaskThreads(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Ship", Status: forum.StatusInProgress}

	t.Run("delete", func(t *testing.T) {
		h := newHarness(t, linked("u1", "700"), task)
		h.seedThread("700", task)
		h.tasks.Update("u1", func(t *forum.Task) { t.Status = forum.StatusComplete })

		report := h.run(t)

		assert.Nil(t, h.gw.Thread("700"))
		assert.Len(t, h.gw.CallsFor(forumtest.OpDelete), 1)
		assert.Equal(t, 0, h.mappings.Stored().Len())
		assert.Equal(t, 1, report.Removed)
	})

	t.Run("archive when delete is denied", func(t *testing.T) {
		h := newHarness(t, linked("u1", "700"), task)
		h.seedThread("700", task)
		h.tasks.Update("u1", func(t *forum.Task) { t.Status = forum.StatusComplete })
		h.gw.FailOp(forumtest.OpDelete, denied(forum.ErrPermissionDenied))

		report := h.run(t)

		th := h.gw.Thread("700")
		require.NotNil(t, th)
		assert.True(t, th.Archived)
		assert.True(t, th.Locked)
		assert.Equal(t, 0, h.mappings.Stored().Len())
		assert.Equal(t, 1, report.Archived)

		h.gw.ResetCalls()
		h.run(t)
		assert.Empty(t, h.gw.Mutations())
	})

	t.Run("transient delete failure keeps mapping", func(t *testing.T) {
		h := newHarness(t, linked("u1", "700"), task)
		h.seedThread("700", task)
		h.tasks.Update("u1", func(t *forum.Task) { t.Status = forum.StatusComplete })
		h.gw.FailOp(forumtest.OpDelete, errTransient)

		report := h.run(t)

		assert.Len(t, h.gw.CallsFor(forumtest.OpDelete), 1, "reverse scan must not retry in the same pass")
		assert.Empty(t, h.gw.CallsFor(forumtest.OpArchive))
		assert.Equal(t, map[string]string{"u1": "700"}, h.mappings.Stored().TaskToThread)
		assert.Equal(t, 1, report.Failed)

		h.gw.FailOp(forumtest.OpDelete, nil)
		h.run(t)
		assert.Nil(t, h.gw.Thread("700"))
		assert.Equal(t, 0, h.mappings.Stored().Len())
	})

	t.Run("unfetchable thread is skipped and retried next pass", func(t *testing.T) {
		h := newHarness(t, linked("u1", "700"), task)
		h.seedThread("700", task)
		h.tasks.Update("u1", func(t *forum.Task) { t.Status = forum.StatusComplete })
		th := h.gw.Thread("700")
		th.Evicted = true
		th.Inactive = true
		h.gw.FailOpFor(forumtest.OpFetchThread, "700", errTransient)

		report := h.run(t)

		assert.Empty(t, h.gw.CallsFor(forumtest.OpDelete))
		assert.NotNil(t, h.gw.Thread("700"))
		assert.Equal(t, map[string]string{"u1": "700"}, h.mappings.Stored().TaskToThread)
		assert.Equal(t, 1, report.Skipped)

		h.gw.FailOpFor(forumtest.OpFetchThread, "700", nil)
		report = h.run(t)

		assert.Nil(t, h.gw.Thread("700"))
		assert.Len(t, h.gw.CallsFor(forumtest.OpDelete), 1)
		assert.Equal(t, 0, h.mappings.Stored().Len())
		assert.Equal(t, 1, report.Removed)
	})

	t.Run("gone thread clears mapping without remote calls", func(t *testing.T) {
		done := task
		done.Status = forum.StatusComplete
		h := newHarness(t, linked("u1", "700"), done)

		h.run(t)

		assert.Empty(t, h.gw.Mutations())
		assert.Equal(t, 0, h.mappings.Stored().Len())
	})
}

func TestReconciler_ReverseScanRemovesUnreachableThreads(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Ship", Status: forum.StatusComplete}
	m := forum.Mapping{
		TaskToThread: map[string]string{},
		ThreadToTask: map[string]string{"700": "u1"},
	}
	h := newHarness(t, m, task)
	h.seedThread("700", task)

	report := h.run(t)

	assert.Nil(t, h.gw.Thread("700"))
	assert.Equal(t, 1, report.Removed)
	stored := h.mappings.Stored()
	assert.Empty(t, stored.TaskToThread)
	assert.Empty(t, stored.ThreadToTask)
}

func TestReconciler_CleansOrphans(t *testing.T) {
	keep := forum.Task{UUID: "u1", Name: "Keep", Status: forum.StatusNotStarted}

	t.Run("live orphan is deleted", func(t *testing.T) {
		h := newHarness(t, linked("u1", "600", "u-gone", "601"), keep)
		h.seedThread("600", keep)
		h.seedThread("601", forum.Task{UUID: "u-gone", Name: "Gone"})

		report := h.run(t)

		assert.Nil(t, h.gw.Thread("601"))
		assert.NotNil(t, h.gw.Thread("600"))
		assert.Equal(t, map[string]string{"u1": "600"}, h.mappings.Stored().TaskToThread)
		assert.Equal(t, 1, report.Orphaned)
	})

	t.Run("unfetchable orphan only loses its mapping", func(t *testing.T) {
		h := newHarness(t, linked("u1", "600", "u-gone", "601"), keep)
		h.seedThread("600", keep)
		h.seedThread("601", forum.Task{UUID: "u-gone", Name: "Gone"})
		th := h.gw.Thread("601")
		th.Evicted = true
		th.Inactive = true
		h.gw.FailOpFor(forumtest.OpFetchThread, "601", errTransient)

		h.run(t)

		assert.Empty(t, h.gw.CallsFor(forumtest.OpDelete))
		assert.NotNil(t, h.gw.Thread("601"))
		stored := h.mappings.Stored()
		assert.Equal(t, map[string]string{"u1": "600"}, stored.TaskToThread)
		assert.Equal(t, map[string]string{"600": "u1"}, stored.ThreadToTask)
	})

	t.Run("missing orphan only loses its mapping", func(t *testing.T) {
		h := newHarness(t, linked("u1", "600", "u-gone", "601"), keep)
		h.seedThread("600", keep)

		h.run(t)

		assert.Empty(t, h.gw.Mutations())
		assert.Equal(t, 1, h.mappings.Stored().Len())
	})
}

func TestReconciler_ContentDriftEditsStarterOnce(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted, Description: "old"}
	h := newHarness(t, linked("u1", "500"), task)
	h.seedThread("500", task)

	h.tasks.Update("u1", func(t *forum.Task) { t.Description = "new" })
	report := h.run(t)

	mutations := h.gw.Mutations()
	require.Len(t, mutations, 1)
	assert.Equal(t, forumtest.OpEditStarter, mutations[0].Op)
	assert.Contains(t, mutations[0].Content, "**Description:** new")
	assert.Equal(t, 1, report.Edited)
	assert.Contains(t, h.gw.Thread("500").Starter.Content, "new")
}

func TestReconciler_RenamesOnNameDrift(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.seedThread("500", task)

	h.tasks.Update("u1", func(t *forum.Task) { t.Priority = forum.PriorityImportant })
	report := h.run(t)

	renames := h.gw.CallsFor(forumtest.OpRename)
	require.Len(t, renames, 1)
	assert.Equal(t, "🔴 Setup", renames[0].Name)
	assert.Equal(t, "🔴 Setup", h.gw.Thread("500").Name)
	assert.Equal(t, 1, report.Renamed)
	assert.Equal(t, 1, report.Edited, "priority line changed too")
}

func TestReconciler_RenamePermissionFailureStillRefreshesContent(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.seedThread("500", task)
	h.gw.FailOp(forumtest.OpRename, denied(forum.ErrPermissionDenied))

	h.tasks.Update("u1", func(t *forum.Task) {
		t.Name = "Setup v2"
		t.Owner = "sam"
	})
	report := h.run(t)

	assert.Equal(t, 1, report.Failed)
	assert.Len(t, h.gw.CallsFor(forumtest.OpEditStarter), 1)
	assert.Equal(t, map[string]string{"u1": "500"}, h.mappings.Stored().TaskToThread)
}

func TestReconciler_EditsWhenControlsDrift(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.gw.AddThread(
		forum.RemoteThread{ID: "500", Name: ThreadName(task), ParentID: testForum},
		&forum.StarterMessage{Content: ThreadContent(task)},
	)

	h.run(t)

	require.Len(t, h.gw.CallsFor(forumtest.OpEditStarter), 1)
	assert.ElementsMatch(t,
		forum.ControlIDs(forum.ControlsFor("u1", nil)),
		h.gw.Thread("500").Starter.ControlIDs,
	)
}

func TestReconciler_PostsWhenStarterUnavailable(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.gw.AddThread(forum.RemoteThread{ID: "500", Name: ThreadName(task), ParentID: testForum}, nil)

	report := h.run(t)

	posts := h.gw.CallsFor(forumtest.OpPost)
	require.Len(t, posts, 1)
	assert.Equal(t, ThreadContent(task), posts[0].Content)
	assert.Empty(t, h.gw.CallsFor(forumtest.OpCreate))
	assert.Equal(t, 1, report.Posted)
}

func TestReconciler_RecreatesGoneThread(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)

	h.run(t)

	threads := h.gw.Threads()
	require.Len(t, threads, 1)
	newID := threads[0].ID
	assert.NotEqual(t, "500", newID)
	stored := h.mappings.Stored()
	assert.Equal(t, map[string]string{"u1": newID}, stored.TaskToThread)
	assert.Equal(t, map[string]string{newID: "u1"}, stored.ThreadToTask)
}

func TestReconciler_UnresolvedThreadIsNotDuplicated(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.seedThread("500", task)
	th := h.gw.Thread("500")
	th.Evicted = true
	th.Inactive = true
	h.gw.FailOpFor(forumtest.OpFetchThread, "500", errTransient)

	report := h.run(t)

	assert.Empty(t, h.gw.Mutations())
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, map[string]string{"u1": "500"}, h.mappings.Stored().TaskToThread)
}

func TestReconciler_FetchesThreadsMissingFromListings(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}
	h := newHarness(t, linked("u1", "500"), task)
	h.seedThread("500", task)
	th := h.gw.Thread("500")
	th.Evicted = true
	th.Inactive = true

	h.run(t)

	assert.Len(t, h.gw.CallsFor(forumtest.OpFetchThread), 1)
	assert.Empty(t, h.gw.Mutations())
}

func TestReconciler_RegistersControls(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted,
		Subtasks: []forum.Subtask{{Name: "one"}, {ID: 9, Name: "two"}}}
	h := newHarness(t, forum.NewMapping(), task)

	h.run(t)

	got := forum.ControlIDs(h.controls.Controls("u1"))
	assert.Equal(t, []string{
		"task:complete:u1",
		"task:edit:u1",
		"task:add-subtask:u1",
		"task:toggle:u1:1",
		"task:toggle:u1:9",
	}, got)
}

func TestReconciler_Failures(t *testing.T) {
	task := forum.Task{UUID: "u1", Name: "Setup", Status: forum.StatusNotStarted}

	t.Run("no forum configured", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		rec := NewReconciler(h.tasks, h.gw, h.mappings, h.controls, "", zerolog.Nop())

		report, err := rec.Run(context.Background())

		require.NoError(t, err)
		assert.Empty(t, h.gw.Calls())
		assert.Zero(t, report.Tasks)
	})

	t.Run("parent is not a forum", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		h.gw.ParentErr = denied(forum.ErrNotForum)

		_, err := h.rec.Run(context.Background())

		require.ErrorIs(t, err, forum.ErrNotForum)
		assert.Empty(t, h.gw.Calls())
		assert.Zero(t, h.mappings.Saves())
	})

	t.Run("task listing fails", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		h.tasks.ListErr = errors.New("database is locked")

		_, err := h.rec.Run(context.Background())

		require.Error(t, err)
		assert.Empty(t, h.gw.Mutations())
	})

	t.Run("mapping load failure starts empty", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		h.mappings.LoadErr = errors.New("corrupt")

		report := h.run(t)

		assert.Equal(t, 1, report.Created)
	})

	t.Run("mapping save failure is not fatal", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		h.mappings.SaveErr = errors.New("disk full")

		report := h.run(t)

		assert.Equal(t, 1, report.Created)
		assert.False(t, report.Saved)
	})

	t.Run("create failure leaves task unmapped", func(t *testing.T) {
		h := newHarness(t, forum.NewMapping(), task)
		h.gw.FailOp(forumtest.OpCreate, errTransient)

		report := h.run(t)

		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 0, h.mappings.Stored().Len())

		h.gw.FailOp(forumtest.OpCreate, nil)
		report = h.run(t)
		assert.Equal(t, 1, report.Created)
	})
}

func denied(err error) error {
	return fmt.Errorf("discord: 403 Forbidden: %w", err)
}
