package forumsync

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/forum/forumtest"
)

func TestBuildThreadIndex(t *testing.T) {
	newGateway := func() *forumtest.Gateway {
		gw := forumtest.NewGateway()
		gw.AddThread(forum.RemoteThread{ID: "1", Name: "cached", ParentID: testForum}, nil).Inactive = true
		gw.AddThread(forum.RemoteThread{ID: "2", Name: "both", ParentID: testForum}, nil)
		gw.AddThread(forum.RemoteThread{ID: "3", Name: "active only", ParentID: testForum}, nil).Evicted = true
		gw.AddThread(forum.RemoteThread{ID: "4", Name: "other forum", ParentID: "other"}, nil)
		return gw
	}

	t.Run("merges listings filtered to parent", func(t *testing.T) {
		index := BuildThreadIndex(context.Background(), newGateway(), testForum, zerolog.Nop())

		assert.ElementsMatch(t, []string{"1", "2", "3"}, keys(index))
	})

	t.Run("active listing failure keeps cached threads", func(t *testing.T) {
		gw := newGateway()
		gw.FailOp(forumtest.OpListActive, errTransient)

		index := BuildThreadIndex(context.Background(), gw, testForum, zerolog.Nop())

		assert.ElementsMatch(t, []string{"1", "2"}, keys(index))
	})

	t.Run("cached listing failure uses active threads", func(t *testing.T) {
		gw := newGateway()
		gw.FailOp(forumtest.OpListCached, errTransient)

		index := BuildThreadIndex(context.Background(), gw, testForum, zerolog.Nop())

		assert.ElementsMatch(t, []string{"2", "3"}, keys(index))
	})

	t.Run("active entries win", func(t *testing.T) {
		gw := forumtest.NewGateway()
		gw.AddThread(forum.RemoteThread{ID: "1", Name: "fresh", ParentID: testForum}, nil)

		index := BuildThreadIndex(context.Background(), gw, testForum, zerolog.Nop())

		assert.Equal(t, "fresh", index["1"].Name)
	})
}

func keys(index ThreadIndex) []string {
	out := make([]string, 0, len(index))
	for id := range index {
		out = append(out, id)
	}
	return out
}
