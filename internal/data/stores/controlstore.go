package stores

import (
	"context"
	"fmt"
	"slices"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/kv"
)

// ControlStore implements forum.ControlRegistry, keeping the controls of each
// task's starter message so interaction handlers can be restored on startup.
type ControlStore struct {
	controls *kv.TypedKV[[]forum.Control]
}

var _ forum.ControlRegistry = (*ControlStore)(nil)

// NewControlStore creates a new KV-backed control registry.
func NewControlStore(store kv.KV) *ControlStore {
	return &ControlStore{controls: kv.Scoped[[]forum.Control](store, "controls")}
}

// Register records the controls of a task. The write is skipped when the
// stored set is identical.
func (s *ControlStore) Register(ctx context.Context, taskKey string, controls []forum.Control) error {
	existing, err := s.controls.Get(ctx, taskKey)
	switch {
	case err == nil:
		if slices.Equal(existing, controls) {
			return nil
		}
	case !IsNotFoundError(err):
		return fmt.Errorf("get controls for %s: %w", taskKey, err)
	}

	if err := s.controls.Set(ctx, taskKey, controls); err != nil {
		return fmt.Errorf("register controls for %s: %w", taskKey, err)
	}
	return nil
}

// Get returns the controls registered for a task.
func (s *ControlStore) Get(ctx context.Context, taskKey string) ([]forum.Control, error) {
	return s.controls.Get(ctx, taskKey)
}

// All returns every registered control set keyed by task key.
func (s *ControlStore) All(ctx context.Context) (map[string][]forum.Control, error) {
	keys, err := s.controls.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list controls: %w", err)
	}

	out := make(map[string][]forum.Control, len(keys))
	for _, key := range keys {
		controls, err := s.controls.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get controls for %s: %w", key, err)
		}
		out[key] = controls
	}
	return out, nil
}

// Forget drops the controls of a task.
func (s *ControlStore) Forget(ctx context.Context, taskKey string) error {
	return s.controls.Delete(ctx, taskKey)
}
