package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/forumsync/internal/core/config"
	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/forum/forumtest"
)

type fakeBackfiller struct {
	*forumtest.TaskSource
	backfilled int
	err        error
}

func (f *fakeBackfiller) BackfillUUIDs(_ context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.backfilled++
	return 1, nil
}

type fakeChecker struct{ err error }

func (f fakeChecker) CheckParent(context.Context, string) error { return f.err }

type namedCheck struct {
	name  string
	items []CheckItem
}

func (c namedCheck) Name() string { return c.name }

func (c namedCheck) Run(context.Context) Result {
	return Result{Name: c.name, Items: c.items}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestRunAllAndSummary(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		namedCheck{name: "a", items: []CheckItem{{Label: "x", Status: StatusPass}, {Label: "y", Status: StatusWarn, Fixable: true}}},
		namedCheck{name: "b", items: []CheckItem{{Label: "z", Status: StatusFail}}},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "pass", results[0].Items[0].StatusStr)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, CountFixable(results))
}

func TestConfigCheck(t *testing.T) {
	cfg := testConfig(t)
	cfg.Discord.Token = "secret"
	cfg.Discord.ForumChannelID = "222222222222222222"

	result := NewConfigCheck(cfg, "").Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)

	cfg.Discord.GuildID = "not-an-id"
	result = NewConfigCheck(cfg, "").Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Equal(t, "discord.guild_id", result.Items[0].Label)
}

func TestConfigCheck_Warnings(t *testing.T) {
	result := NewConfigCheck(testConfig(t), "").Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, StatusWarn, result.Items[1].Status)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
}

func TestTasksCheck(t *testing.T) {
	tasks := &fakeBackfiller{TaskSource: forumtest.NewTaskSource(
		forum.Task{UUID: "u1", Name: "Setup"},
		forum.Task{LegacyID: "7", Name: "Legacy", Status: forum.StatusComplete},
	)}

	t.Run("reports missing uuids", func(t *testing.T) {
		result := NewTasksCheck(tasks, false).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, "2 tasks, 1 open", result.Items[0].Detail)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
		assert.True(t, result.Items[1].Fixable)
		assert.Zero(t, tasks.backfilled)
	})

	t.Run("autofix backfills", func(t *testing.T) {
		result := NewTasksCheck(tasks, true).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, 1, tasks.backfilled)
	})

	t.Run("backfill failure", func(t *testing.T) {
		failing := &fakeBackfiller{TaskSource: tasks.TaskSource, err: errors.New("disk full")}
		result := NewTasksCheck(failing, true).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusFail, result.Items[1].Status)
	})
}

func TestMappingCheck(t *testing.T) {
	tasks := forumtest.NewTaskSource(forum.Task{UUID: "u1", LegacyID: "7", Name: "Setup"})

	t.Run("healthy", func(t *testing.T) {
		m := forum.NewMapping()
		m.Link("u1", "500")
		m.Link("7", "501")

		result := NewMappingCheck(forumtest.NewMappingStore(m), tasks, false).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, "2 linked threads", result.Items[1].Detail)
	})

	t.Run("unknown task", func(t *testing.T) {
		m := forum.NewMapping()
		m.Link("gone", "500")

		result := NewMappingCheck(forumtest.NewMappingStore(m), tasks, false).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
	})

	t.Run("half written mapping", func(t *testing.T) {
		m := forum.NewMapping()
		m.TaskToThread["u1"] = "500"
		store := forumtest.NewMappingStore(m)

		result := NewMappingCheck(store, tasks, false).Run(context.Background())
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.True(t, result.Items[0].Fixable)
		assert.Zero(t, store.Saves())

		result = NewMappingCheck(store, tasks, true).Run(context.Background())
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, 1, store.Saves())
		assert.True(t, store.Stored().IsBijection())
	})

	t.Run("load failure", func(t *testing.T) {
		store := forumtest.NewMappingStore(forum.NewMapping())
		store.LoadErr = errors.New("locked")

		result := NewMappingCheck(store, tasks, false).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})
}

func TestDiscordCheck(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		guild      string
		forumID    string
		checker    forum.ParentChecker
		wantForum  Status
		wantFailed int
	}{
		{name: "nothing set", wantForum: StatusWarn, wantFailed: 2},
		{name: "unverified", token: "t", guild: "1", forumID: "2", wantForum: StatusWarn},
		{name: "verified", token: "t", guild: "1", forumID: "2", checker: fakeChecker{}, wantForum: StatusPass},
		{
			name: "not a forum", token: "t", guild: "1", forumID: "2",
			checker:    fakeChecker{err: forum.ErrNotForum},
			wantForum:  StatusFail,
			wantFailed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Discord.Token = tt.token
			cfg.Discord.GuildID = tt.guild
			cfg.Discord.ForumChannelID = tt.forumID

			result := NewDiscordCheck(cfg, tt.checker).Run(context.Background())

			require.Len(t, result.Items, 3)
			assert.Equal(t, tt.wantForum, result.Items[2].Status)
			_, _, failed := Summary([]Result{result})
			assert.Equal(t, tt.wantFailed, failed)
		})
	}
}
