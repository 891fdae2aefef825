package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/kv"
)

// MappingKey is the KV key holding the task/thread mapping document.
const MappingKey = "forum:mappings"

// MappingStore implements forum.MappingStore on top of a KV store. Both
// directions are stored in a single document so a save is atomic.
type MappingStore struct {
	kv kv.KV
}

var _ forum.MappingStore = (*MappingStore)(nil)

// NewMappingStore creates a new KV-backed mapping store.
func NewMappingStore(store kv.KV) *MappingStore {
	return &MappingStore{kv: store}
}

// Load returns the stored mapping, or an empty one if none was saved yet.
func (s *MappingStore) Load(ctx context.Context) (forum.Mapping, error) {
	m := forum.NewMapping()
	if err := s.kv.Get(ctx, MappingKey, &m); err != nil {
		if IsNotFoundError(err) {
			return forum.NewMapping(), nil
		}
		return forum.Mapping{}, fmt.Errorf("load forum mappings: %w", err)
	}

	// A document missing either side decodes as nil maps.
	return m.Clone(), nil
}

// Save overwrites the stored mapping.
func (s *MappingStore) Save(ctx context.Context, m forum.Mapping) error {
	if err := s.kv.Set(ctx, MappingKey, m.Clone()); err != nil {
		return fmt.Errorf("save forum mappings: %w", err)
	}
	return nil
}
