package forum

import "context"

// TaskSource provides the canonical task set. All keyed operations take the
// value returned by Task.Key.
type TaskSource interface {
	// ListAll returns every task, in no particular order.
	ListAll(ctx context.Context) ([]Task, error)

	// GetByKey returns a single task. Returns ErrTaskNotFound if absent.
	GetByKey(ctx context.Context, key string) (Task, error)

	// RenameByKey changes a task's name.
	RenameByKey(ctx context.Context, key, name string) error

	// UpdateDescriptionByKey replaces a task's description.
	UpdateDescriptionByKey(ctx context.Context, key, description string) error

	// UpsertSubtask inserts or replaces the subtask with st.ID on the task.
	UpsertSubtask(ctx context.Context, taskKey string, st Subtask) error
}

// ThreadGateway performs operations against the remote forum. Implementations
// wrap ErrPermissionDenied and ErrNotFound so callers can pick a fallback;
// every other error is treated as transient.
type ThreadGateway interface {
	// ListCachedThreads returns threads of parentID known to the local cache.
	// The result may omit threads evicted from the cache.
	ListCachedThreads(ctx context.Context, parentID string) ([]RemoteThread, error)

	// ListActiveThreads fetches the active threads of the parent's guild.
	// Callers filter by ParentID.
	ListActiveThreads(ctx context.Context, parentID string) ([]RemoteThread, error)

	// FetchThread fetches a single thread. Returns ErrNotFound if it is gone.
	FetchThread(ctx context.Context, id string) (RemoteThread, error)

	// CreateThread opens a thread with a starter message.
	CreateThread(ctx context.Context, parentID, name, content string, controls []Control) (RemoteThread, error)

	// RenameThread changes a thread's title.
	RenameThread(ctx context.Context, id, name string) error

	// DeleteThread removes a thread.
	DeleteThread(ctx context.Context, id string) error

	// ArchiveAndLock hides a thread from the default forum view.
	ArchiveAndLock(ctx context.Context, id string) error

	// FetchStarterMessage returns the first message of a thread.
	FetchStarterMessage(ctx context.Context, threadID string) (StarterMessage, error)

	// EditStarterMessage replaces the starter message body and controls.
	EditStarterMessage(ctx context.Context, threadID, content string, controls []Control) error

	// PostMessage appends a message to a thread.
	PostMessage(ctx context.Context, threadID, content string, controls []Control) error
}

// ParentChecker is implemented by gateways that can verify the parent channel
// accepts threads. CheckParent returns ErrNotForum when it does not.
type ParentChecker interface {
	CheckParent(ctx context.Context, parentID string) error
}

// MappingStore persists the task/thread mapping.
type MappingStore interface {
	// Load returns the stored mapping, or an empty one when nothing is stored.
	Load(ctx context.Context) (Mapping, error)

	// Save overwrites the stored mapping.
	Save(ctx context.Context, m Mapping) error
}

// ControlRegistry records the controls attached to each task's thread so
// interaction handlers can be restored after a restart.
type ControlRegistry interface {
	Register(ctx context.Context, taskKey string, controls []Control) error
}
