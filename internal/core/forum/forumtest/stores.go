package forumtest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// TaskSource is an in-memory forum.TaskSource.
type TaskSource struct {
	mu      sync.Mutex
	tasks   []forum.Task
	ListErr error
}

var _ forum.TaskSource = (*TaskSource)(nil)

// NewTaskSource returns a source seeded with tasks.
func NewTaskSource(tasks ...forum.Task) *TaskSource {
	return &TaskSource{tasks: slices.Clone(tasks)}
}

// Set replaces the task set.
func (s *TaskSource) Set(tasks ...forum.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = slices.Clone(tasks)
}

// Update applies fn to the task with the given key.
func (s *TaskSource) Update(key string, fn func(*forum.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(key); i >= 0 {
		fn(&s.tasks[i])
	}
}

// Remove drops the task with the given key.
func (s *TaskSource) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(key); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
}

func (s *TaskSource) index(key string) int {
	return slices.IndexFunc(s.tasks, func(t forum.Task) bool { return t.Key() == key })
}

func (s *TaskSource) ListAll(_ context.Context) ([]forum.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]forum.Task, len(s.tasks))
	for i, t := range s.tasks {
		t.Subtasks = slices.Clone(t.Subtasks)
		out[i] = t
	}
	return out, nil
}

func (s *TaskSource) GetByKey(_ context.Context, key string) (forum.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(key)
	if i < 0 {
		return forum.Task{}, fmt.Errorf("task %q: %w", key, forum.ErrTaskNotFound)
	}
	return s.tasks[i], nil
}

func (s *TaskSource) RenameByKey(_ context.Context, key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(key)
	if i < 0 {
		return fmt.Errorf("task %q: %w", key, forum.ErrTaskNotFound)
	}
	s.tasks[i].Name = name
	return nil
}

func (s *TaskSource) UpdateDescriptionByKey(_ context.Context, key, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(key)
	if i < 0 {
		return fmt.Errorf("task %q: %w", key, forum.ErrTaskNotFound)
	}
	s.tasks[i].Description = description
	return nil
}

func (s *TaskSource) UpsertSubtask(_ context.Context, taskKey string, st forum.Subtask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(taskKey)
	if i < 0 {
		return fmt.Errorf("task %q: %w", taskKey, forum.ErrTaskNotFound)
	}
	subs := s.tasks[i].Subtasks
	if j := slices.IndexFunc(subs, func(x forum.Subtask) bool { return x.ID == st.ID }); j >= 0 {
		subs[j] = st
		return nil
	}
	s.tasks[i].Subtasks = append(subs, st)
	return nil
}

// MappingStore is an in-memory forum.MappingStore that counts saves.
type MappingStore struct {
	mu      sync.Mutex
	stored  forum.Mapping
	saves   int
	LoadErr error
	SaveErr error
}

var _ forum.MappingStore = (*MappingStore)(nil)

// NewMappingStore returns a store holding a copy of m.
func NewMappingStore(m forum.Mapping) *MappingStore {
	return &MappingStore{stored: m.Clone()}
}

func (s *MappingStore) Load(_ context.Context) (forum.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return forum.Mapping{}, s.LoadErr
	}
	return s.stored.Clone(), nil
}

func (s *MappingStore) Save(_ context.Context, m forum.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	s.stored = m.Clone()
	return nil
}

// Stored returns a copy of the persisted mapping.
func (s *MappingStore) Stored() forum.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored.Clone()
}

// Saves returns how many times Save succeeded.
func (s *MappingStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// ControlRegistry is an in-memory forum.ControlRegistry.
type ControlRegistry struct {
	mu       sync.Mutex
	controls map[string][]forum.Control
}

var _ forum.ControlRegistry = (*ControlRegistry)(nil)

// NewControlRegistry returns an empty registry.
func NewControlRegistry() *ControlRegistry {
	return &ControlRegistry{controls: map[string][]forum.Control{}}
}

func (r *ControlRegistry) Register(_ context.Context, taskKey string, controls []forum.Control) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls[taskKey] = slices.Clone(controls)
	return nil
}

// Controls returns the controls registered for a task key.
func (r *ControlRegistry) Controls(taskKey string) []forum.Control {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.controls[taskKey])
}
