package forumsync

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/forum/forumtest"
)

func newLinkService(tasks ...forum.Task) (*LinkService, *forumtest.TaskSource) {
	src := forumtest.NewTaskSource(tasks...)
	mappings := forumtest.NewMappingStore(linked("u1", "500"))
	return NewLinkService(src, mappings, zerolog.Nop()), src
}

func TestLinkService_TaskKeyForThread(t *testing.T) {
	svc, _ := newLinkService()
	ctx := context.Background()

	key, err := svc.TaskKeyForThread(ctx, "500")
	require.NoError(t, err)
	assert.Equal(t, "u1", key)

	_, err = svc.TaskKeyForThread(ctx, "501")
	require.ErrorIs(t, err, forum.ErrThreadNotLinked)
}

func TestLinkService_HandleThreadRename(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		threadID   string
		threadName string
		want       string
	}{
		{name: "strips marker", threadID: "500", threadName: "🔴 Release", want: "Release"},
		{name: "no marker", threadID: "500", threadName: "Release", want: "Release"},
		{name: "unchanged", threadID: "500", threadName: "⚪ Setup", want: "Setup"},
		{name: "blank is ignored", threadID: "500", threadName: "🟠 ", want: "Setup"},
		{name: "unlinked thread is ignored", threadID: "999", threadName: "Other", want: "Setup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, src := newLinkService(forum.Task{UUID: "u1", Name: "Setup"})

			require.NoError(t, svc.HandleThreadRename(ctx, tt.threadID, tt.threadName))

			got, err := src.GetByKey(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestLinkService_UpdateDescriptionForThread(t *testing.T) {
	ctx := context.Background()
	svc, src := newLinkService(forum.Task{UUID: "u1", Name: "Setup"})

	require.NoError(t, svc.UpdateDescriptionForThread(ctx, "500", "from the forum"))
	got, err := src.GetByKey(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "from the forum", got.Description)

	err = svc.UpdateDescriptionForThread(ctx, "501", "nope")
	require.ErrorIs(t, err, forum.ErrThreadNotLinked)
}

func TestLinkService_HandleThreadRename_TruncatedTitle(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("a", 150)
	svc, src := newLinkService(forum.Task{UUID: "u1", Name: long})

	require.NoError(t, svc.HandleThreadRename(ctx, "500", ThreadName(forum.Task{Name: long})))

	got, err := src.GetByKey(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, long, got.Name)
}
