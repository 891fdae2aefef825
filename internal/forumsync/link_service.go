package forumsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// LinkService applies edits made on the forum side back to the linked task.
type LinkService struct {
	tasks    forum.TaskSource
	mappings forum.MappingStore
	log      zerolog.Logger
}

// NewLinkService creates a new LinkService.
func NewLinkService(tasks forum.TaskSource, mappings forum.MappingStore, log zerolog.Logger) *LinkService {
	return &LinkService{
		tasks:    tasks,
		mappings: mappings,
		log:      log.With().Str("component", "link-service").Logger(),
	}
}

// TaskKeyForThread returns the key of the task linked to threadID. The mapping
// is reloaded on every call. Returns forum.ErrThreadNotLinked when the thread
// has no task.
func (s *LinkService) TaskKeyForThread(ctx context.Context, threadID string) (string, error) {
	m, err := s.mappings.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load forum mappings: %w", err)
	}

	key, ok := m.TaskFor(threadID)
	if !ok {
		return "", fmt.Errorf("thread %s: %w", threadID, forum.ErrThreadNotLinked)
	}
	return key, nil
}

// HandleThreadRename renames the task linked to threadID after a user renamed
// the thread. A leading priority marker is stripped first. Unlinked threads and
// names that already match the task, or its rendered title, are ignored.
func (s *LinkService) HandleThreadRename(ctx context.Context, threadID, threadName string) error {
	key, err := s.TaskKeyForThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, forum.ErrThreadNotLinked) {
			s.log.Debug().Str("thread_id", threadID).Msg("ignoring rename of unlinked thread")
			return nil
		}
		return err
	}

	name := strings.TrimSpace(forum.StripMarker(threadName))
	if name == "" {
		return nil
	}

	task, err := s.tasks.GetByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("get task %s: %w", key, err)
	}
	if task.Name == name || ThreadName(task) == threadName {
		return nil
	}

	if err := s.tasks.RenameByKey(ctx, key, name); err != nil {
		return fmt.Errorf("rename task %s: %w", key, err)
	}

	s.log.Info().
		Str("task_key", key).
		Str("from", task.Name).
		Str("to", name).
		Msg("renamed task from forum thread")
	return nil
}

// UpdateDescriptionForThread replaces the description of the task linked to
// threadID.
func (s *LinkService) UpdateDescriptionForThread(ctx context.Context, threadID, description string) error {
	key, err := s.TaskKeyForThread(ctx, threadID)
	if err != nil {
		return err
	}

	if err := s.tasks.UpdateDescriptionByKey(ctx, key, description); err != nil {
		return fmt.Errorf("update description of task %s: %w", key, err)
	}
	return nil
}
