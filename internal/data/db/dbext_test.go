package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := database.WithTx(ctx, func(q *Queries) error {
		if err := q.KVSet(ctx, KVSetParams{Key: "k", Value: []byte(`1`), CreatedAt: 1, UpdatedAt: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := database.Queries().KVHas(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWithTx_Commits(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(q *Queries) error {
		_, err := q.InsertTask(ctx, InsertTaskParams{Name: "Setup", Status: "Not Started", CreatedAt: 1, UpdatedAt: 1})
		return err
	})
	require.NoError(t, err)

	tasks, err := database.Queries().ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Setup", tasks[0].Name)
}

func TestDeleteTask_CascadesSubtasks(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	q := database.Queries()

	id, err := q.InsertTask(ctx, InsertTaskParams{Name: "Setup", Status: "Not Started", CreatedAt: 1, UpdatedAt: 1})
	require.NoError(t, err)
	require.NoError(t, q.UpsertSubtask(ctx, UpsertSubtaskParams{TaskID: id, SubtaskID: 1, Name: "one"}))

	require.NoError(t, q.DeleteTask(ctx, id))

	subs, err := q.ListSubtasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestOpen_CustomOptions(t *testing.T) {
	database, err := Open(t.TempDir(), OpenOptions{MaxOpenConns: 1, MaxIdleConns: 1, BusyTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	assert.Equal(t, 1, database.Conn().Stats().MaxOpenConnections)
}
