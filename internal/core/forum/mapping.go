package forum

import "slices"

// Mapping is the bidirectional task-key <-> thread-id index. Both directions are
// persisted so that a half-applied write from an older process can still be
// detected and repaired by Normalize.
type Mapping struct {
	TaskToThread map[string]string `json:"task_to_thread"`
	ThreadToTask map[string]string `json:"thread_to_task"`
}

// NewMapping returns an empty mapping.
func NewMapping() Mapping {
	return Mapping{
		TaskToThread: map[string]string{},
		ThreadToTask: map[string]string{},
	}
}

// ensure initialises nil maps, e.g. after decoding a partial document.
func (m *Mapping) ensure() {
	if m.TaskToThread == nil {
		m.TaskToThread = map[string]string{}
	}
	if m.ThreadToTask == nil {
		m.ThreadToTask = map[string]string{}
	}
}

// Clone returns a deep copy.
func (m Mapping) Clone() Mapping {
	out := NewMapping()
	for k, v := range m.TaskToThread {
		out.TaskToThread[k] = v
	}
	for k, v := range m.ThreadToTask {
		out.ThreadToTask[k] = v
	}
	return out
}

// Len returns the number of task entries.
func (m Mapping) Len() int {
	return len(m.TaskToThread)
}

// ThreadFor returns the thread mapped to a task key.
func (m Mapping) ThreadFor(taskKey string) (string, bool) {
	id, ok := m.TaskToThread[taskKey]
	return id, ok && id != ""
}

// TaskFor returns the task key mapped to a thread id.
func (m Mapping) TaskFor(threadID string) (string, bool) {
	key, ok := m.ThreadToTask[threadID]
	return key, ok && key != ""
}

// Link records taskKey <-> threadID in both directions, first dropping any
// entry that would leave either side pointing at a stale partner.
func (m *Mapping) Link(taskKey, threadID string) {
	m.ensure()
	if old, ok := m.TaskToThread[taskKey]; ok && old != threadID && m.ThreadToTask[old] == taskKey {
		delete(m.ThreadToTask, old)
	}
	if old, ok := m.ThreadToTask[threadID]; ok && old != taskKey && m.TaskToThread[old] == threadID {
		delete(m.TaskToThread, old)
	}
	m.TaskToThread[taskKey] = threadID
	m.ThreadToTask[threadID] = taskKey
}

// UnlinkThread removes a thread and the task entry pointing at it. A task entry
// that points at a different thread is left alone.
func (m *Mapping) UnlinkThread(threadID string) {
	m.ensure()
	if key, ok := m.ThreadToTask[threadID]; ok {
		if m.TaskToThread[key] == threadID {
			delete(m.TaskToThread, key)
		}
		delete(m.ThreadToTask, threadID)
	}
	for key, id := range m.TaskToThread {
		if id == threadID {
			delete(m.TaskToThread, key)
		}
	}
}

// UnlinkTask removes a task key and the thread entry pointing back at it.
func (m *Mapping) UnlinkTask(taskKey string) {
	m.ensure()
	if id, ok := m.TaskToThread[taskKey]; ok {
		if m.ThreadToTask[id] == taskKey {
			delete(m.ThreadToTask, id)
		}
		delete(m.TaskToThread, taskKey)
	}
}

// Migrate moves the entry stored under legacyKey to canonicalKey. It reports
// whether an entry was moved.
func (m *Mapping) Migrate(legacyKey, canonicalKey string) (string, bool) {
	m.ensure()
	threadID, ok := m.TaskToThread[legacyKey]
	if !ok || threadID == "" || legacyKey == canonicalKey {
		return "", false
	}
	delete(m.TaskToThread, legacyKey)
	m.Link(canonicalKey, threadID)
	return threadID, true
}

// Normalize repairs the mapping into a bijection with TaskToThread as the
// authoritative side: reverse entries without a matching forward entry are
// dropped, missing reverse entries are added, and when two task keys claim the
// same thread the lexically smallest key keeps it. It reports whether anything
// changed.
func (m *Mapping) Normalize() bool {
	m.ensure()
	changed := false

	keys := make([]string, 0, len(m.TaskToThread))
	for k := range m.TaskToThread {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	owner := make(map[string]string, len(keys))
	for _, k := range keys {
		id := m.TaskToThread[k]
		if k == "" || id == "" {
			delete(m.TaskToThread, k)
			changed = true
			continue
		}
		if _, taken := owner[id]; taken {
			delete(m.TaskToThread, k)
			changed = true
			continue
		}
		owner[id] = k
	}

	for id, k := range m.ThreadToTask {
		if owner[id] != k {
			delete(m.ThreadToTask, id)
			changed = true
		}
	}
	for id, k := range owner {
		if m.ThreadToTask[id] != k {
			m.ThreadToTask[id] = k
			changed = true
		}
	}

	return changed
}

// IsBijection reports whether the two directions are exact inverses.
func (m Mapping) IsBijection() bool {
	if len(m.TaskToThread) != len(m.ThreadToTask) {
		return false
	}
	for k, id := range m.TaskToThread {
		if m.ThreadToTask[id] != k {
			return false
		}
	}
	return true
}

// KeyResolutionKind tags the outcome of ResolveKey.
type KeyResolutionKind int

const (
	// KeyUnmapped means no entry exists under the canonical or any legacy key.
	KeyUnmapped KeyResolutionKind = iota
	// KeyCanonical means the entry was found under the canonical key.
	KeyCanonical
	// KeyMigrated means the entry was found under a legacy key and moved.
	KeyMigrated
)

// KeyResolution is the result of looking a task up in the mapping.
type KeyResolution struct {
	Kind      KeyResolutionKind
	Key       string
	ThreadID  string
	LegacyKey string
}

// ResolveKey finds the thread for a task, trying the canonical key first and
// then each legacy key in priority order. A legacy hit is rewritten under the
// canonical key so at most one thread ever exists per logical task.
func (m *Mapping) ResolveKey(t Task) KeyResolution {
	key := t.Key()
	if id, ok := m.ThreadFor(key); ok {
		return KeyResolution{Kind: KeyCanonical, Key: key, ThreadID: id}
	}

	for _, legacy := range t.LegacyKeys() {
		if id, ok := m.Migrate(legacy, key); ok {
			return KeyResolution{Kind: KeyMigrated, Key: key, ThreadID: id, LegacyKey: legacy}
		}
	}

	return KeyResolution{Kind: KeyUnmapped, Key: key}
}
