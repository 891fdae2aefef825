package forumsync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// ThreadIndex holds the live threads of the forum keyed by id.
type ThreadIndex map[string]forum.RemoteThread

// BuildThreadIndex merges the cached thread listing with the actively fetched
// one. Active entries overwrite cached entries with the same id because they
// are fresher. Either listing failing degrades to what the other returned.
func BuildThreadIndex(ctx context.Context, gw forum.ThreadGateway, parentID string, log zerolog.Logger) ThreadIndex {
	index := ThreadIndex{}

	cached, err := gw.ListCachedThreads(ctx, parentID)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("parent_id", parentID).Msg("could not list cached threads")
	}
	for _, th := range cached {
		index[th.ID] = th
	}

	active, err := gw.ListActiveThreads(ctx, parentID)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("parent_id", parentID).Msg("could not enumerate active threads")
		return index
	}
	for _, th := range active {
		if th.ParentID != parentID {
			continue
		}
		index[th.ID] = th
	}

	return index
}
