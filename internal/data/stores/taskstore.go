package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/data/db"
)

// ErrDuplicateTask is returned when a task with the same UUID already exists.
var ErrDuplicateTask = errors.New("task with this uuid already exists")

// TaskStore implements forum.TaskSource using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ forum.TaskSource = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// ListAll returns every task with its subtasks.
func (s *TaskStore) ListAll(ctx context.Context) ([]forum.Task, error) {
	rows, err := s.db.Queries().ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	subRows, err := s.db.Queries().ListSubtasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}

	subs := make(map[int64][]forum.Subtask, len(rows))
	for _, row := range subRows {
		subs[row.TaskID] = append(subs[row.TaskID], rowToSubtask(row))
	}

	tasks := make([]forum.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row, subs[row.ID]))
	}

	return tasks, nil
}

// GetByKey returns the task identified by key. The key is matched against the
// UUID, then the legacy id, then the name. Returns forum.ErrTaskNotFound if no
// task matches.
func (s *TaskStore) GetByKey(ctx context.Context, key string) (forum.Task, error) {
	row, err := lookupTask(ctx, s.db.Queries(), key)
	if err != nil {
		return forum.Task{}, err
	}

	subRows, err := s.db.Queries().ListSubtasksForTask(ctx, row.ID)
	if err != nil {
		return forum.Task{}, fmt.Errorf("list subtasks for %s: %w", key, err)
	}

	subs := make([]forum.Subtask, 0, len(subRows))
	for _, sr := range subRows {
		subs = append(subs, rowToSubtask(sr))
	}

	return rowToTask(row, subs), nil
}

// RenameByKey changes a task's name.
func (s *TaskStore) RenameByKey(ctx context.Context, key, name string) error {
	return s.update(ctx, key, func(q *db.Queries, id int64, now int64) error {
		return q.UpdateTaskName(ctx, db.UpdateTaskNameParams{Name: name, UpdatedAt: now, ID: id})
	})
}

// UpdateDescriptionByKey replaces a task's description.
func (s *TaskStore) UpdateDescriptionByKey(ctx context.Context, key, description string) error {
	return s.update(ctx, key, func(q *db.Queries, id int64, now int64) error {
		return q.UpdateTaskDescription(ctx, db.UpdateTaskDescriptionParams{Description: description, UpdatedAt: now, ID: id})
	})
}

// SetStatus changes a task's status.
func (s *TaskStore) SetStatus(ctx context.Context, key string, status forum.Status) error {
	return s.update(ctx, key, func(q *db.Queries, id int64, now int64) error {
		return q.UpdateTaskStatus(ctx, db.UpdateTaskStatusParams{Status: string(status), UpdatedAt: now, ID: id})
	})
}

// UpsertSubtask inserts or replaces a subtask. A zero ID is assigned the next
// free id of the task.
func (s *TaskStore) UpsertSubtask(ctx context.Context, taskKey string, st forum.Subtask) error {
	return s.update(ctx, taskKey, func(q *db.Queries, id int64, _ int64) error {
		subID := int64(st.ID)
		if subID == 0 {
			next, err := q.NextSubtaskID(ctx, id)
			if err != nil {
				return fmt.Errorf("next subtask id: %w", err)
			}
			subID = next
		}
		return q.UpsertSubtask(ctx, subtaskParams(id, subID, st))
	})
}

// Delete removes a task and its subtasks.
func (s *TaskStore) Delete(ctx context.Context, key string) error {
	return s.update(ctx, key, func(q *db.Queries, id int64, _ int64) error {
		return q.DeleteTask(ctx, id)
	})
}

// NextOrder returns the order value that places a new task last.
func (s *TaskStore) NextOrder(ctx context.Context) (int, error) {
	n, err := s.db.Queries().NextSortOrder(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return int(n), nil
}

// Create persists a new task, assigning a UUID and a default status when
// unset. The stored task is returned.
func (s *TaskStore) Create(ctx context.Context, t forum.Task) (forum.Task, error) {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	if err := s.Import(ctx, []forum.Task{t}); err != nil {
		return forum.Task{}, err
	}
	return s.GetByKey(ctx, t.UUID)
}

// Import inserts tasks exactly as given, in one transaction. Tasks without a
// UUID keep their legacy identity until BackfillUUIDs runs.
func (s *TaskStore) Import(ctx context.Context, tasks []forum.Task) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		now := time.Now().UnixNano()
		for _, t := range tasks {
			if t.Status == "" {
				t.Status = forum.StatusNotStarted
			}

			id, err := q.InsertTask(ctx, db.InsertTaskParams{
				Uuid:        t.UUID,
				LegacyID:    t.LegacyID,
				Name:        t.Name,
				Status:      string(t.Status),
				Priority:    string(t.Priority),
				Owner:       t.Owner,
				Deadline:    t.Deadline,
				Description: t.Description,
				Url:         t.URL,
				SortOrder:   int64(t.Order),
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				if isUniqueConstraintError(err) {
					return fmt.Errorf("insert task %q: %w", t.Name, ErrDuplicateTask)
				}
				return fmt.Errorf("insert task %q: %w", t.Name, err)
			}

			numbers := forum.SubtaskNumbers(t.Subtasks)
			for i, st := range t.Subtasks {
				subID := int64(numbers[i])
				if err := q.UpsertSubtask(ctx, subtaskParams(id, subID, st)); err != nil {
					return fmt.Errorf("insert subtask %d of %q: %w", subID, t.Name, err)
				}
			}
		}
		return nil
	})
}

// BackfillUUIDs assigns a UUID to every task that lacks one and returns how
// many tasks were updated.
func (s *TaskStore) BackfillUUIDs(ctx context.Context) (int, error) {
	var n int
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		rows, err := q.ListTasksWithoutUUID(ctx)
		if err != nil {
			return fmt.Errorf("list tasks without uuid: %w", err)
		}

		now := time.Now().UnixNano()
		for _, row := range rows {
			if err := q.SetTaskUUID(ctx, db.SetTaskUUIDParams{Uuid: uuid.NewString(), UpdatedAt: now, ID: row.ID}); err != nil {
				return fmt.Errorf("set uuid of task %d: %w", row.ID, err)
			}
		}
		n = len(rows)
		return nil
	})
	return n, err
}

func (s *TaskStore) update(ctx context.Context, key string, fn func(q *db.Queries, id int64, now int64) error) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		row, err := lookupTask(ctx, q, key)
		if err != nil {
			return err
		}
		if err := fn(q, row.ID, time.Now().UnixNano()); err != nil {
			return fmt.Errorf("update task %s: %w", key, err)
		}
		return nil
	})
}

// lookupTask resolves a task key with the same precedence as forum.Task.Key.
func lookupTask(ctx context.Context, q *db.Queries, key string) (db.Task, error) {
	lookups := []func(context.Context, string) (db.Task, error){
		q.GetTaskByUUID,
		q.GetTaskByLegacyID,
		q.GetTaskByName,
	}

	if key == "" {
		return db.Task{}, fmt.Errorf("task %q: %w", key, forum.ErrTaskNotFound)
	}

	for _, get := range lookups {
		row, err := get(ctx, key)
		if err == nil {
			return row, nil
		}
		if !IsNotFoundError(err) {
			return db.Task{}, fmt.Errorf("get task %s: %w", key, err)
		}
	}

	return db.Task{}, fmt.Errorf("task %q: %w", key, forum.ErrTaskNotFound)
}

func subtaskParams(taskID, subID int64, st forum.Subtask) db.UpsertSubtaskParams {
	completed := int64(0)
	if st.Completed {
		completed = 1
	}
	return db.UpsertSubtaskParams{
		TaskID:      taskID,
		SubtaskID:   subID,
		Name:        st.Name,
		Description: st.Description,
		Url:         st.URL,
		Completed:   completed,
	}
}

func rowToTask(row db.Task, subs []forum.Subtask) forum.Task {
	return forum.Task{
		UUID:        row.Uuid,
		LegacyID:    row.LegacyID,
		Name:        row.Name,
		Status:      forum.Status(row.Status),
		Priority:    forum.Priority(row.Priority),
		Owner:       row.Owner,
		Deadline:    row.Deadline,
		Description: row.Description,
		URL:         row.Url,
		Subtasks:    subs,
		Order:       int(row.SortOrder),
	}
}

func rowToSubtask(row db.Subtask) forum.Subtask {
	return forum.Subtask{
		ID:          int(row.SubtaskID),
		Name:        row.Name,
		Description: row.Description,
		URL:         row.Url,
		Completed:   row.Completed != 0,
	}
}
