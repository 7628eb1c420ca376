package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rahul/planweave/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TaskStore {
	t.Helper()
	s, err := NewTaskStore(filepath.Join(t.TempDir(), "planweave.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTaskStore_AddAndPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddTask(ctx, "42", "summarize the news", time.Hour)
	require.NoError(t, err)
	assert.NotZero(t, id)

	pending, err := s.GetPendingTasks(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, "42", pending[0].ChatID)
	assert.Equal(t, "summarize the news", pending[0].Request)
	assert.Equal(t, time.Hour, pending[0].Interval)

	require.NoError(t, s.UpdateTaskLastRun(ctx, id))
	pending, err = s.GetPendingTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "not due again within the hour")

	listed, err := s.ListTasks(ctx, "42")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.WithinDuration(t, time.Now().UTC(), listed[0].LastRun, time.Minute)
}

func TestTaskStore_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddTask(ctx, "42", "too often", 10*time.Second)
	assert.Equal(t, core.ErrCatValidation, core.CategoryOf(err))

	_, err = s.AddTask(ctx, "42", "", time.Hour)
	assert.Equal(t, core.ErrCatValidation, core.CategoryOf(err))

	_, err = s.AddTask(ctx, "42", "once", 0)
	assert.NoError(t, err)
}

func TestTaskStore_DeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddTask(ctx, "1", "a", time.Hour)
	require.NoError(t, err)
	_, err = s.AddTask(ctx, "1", "b", time.Hour)
	require.NoError(t, err)
	_, err = s.AddTask(ctx, "2", "c", time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, "1", a))
	err = s.DeleteTask(ctx, "1", a)
	assert.Equal(t, core.ErrCatNotFound, core.CategoryOf(err))

	n, err := s.ClearTasks(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := s.ListTasks(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
