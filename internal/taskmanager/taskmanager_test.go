package taskmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForStatus(t *testing.T, tm *TaskManager, task Task, want TaskStatus) Task {
	t.Helper()
	var got Task
	require.Eventually(t, func() bool {
		var err error
		got, err = tm.GetTask(task.ID)
		return err == nil && got.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestTaskManager_Statuses(t *testing.T) {
	tm := New(Config{MaxTasks: 5}, zap.NewNop())
	defer tm.Shutdown(context.Background())

	okID, err := tm.SubmitTask("ok", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	waitForStatus(t, tm, Task{ID: okID}, TaskStatusCompleted)

	failID, err := tm.SubmitTask("fail", func(ctx context.Context) error { return errors.New("boom") })
	require.NoError(t, err)
	failed := waitForStatus(t, tm, Task{ID: failID}, TaskStatusFailed)
	assert.Equal(t, "boom", failed.Message)

	panicID, err := tm.SubmitTask("panic", func(ctx context.Context) error { panic("oops") })
	require.NoError(t, err)
	panicked := waitForStatus(t, tm, Task{ID: panicID}, TaskStatusFailed)
	assert.Contains(t, panicked.Message, "oops")
}

func TestTaskManager_Cancel(t *testing.T) {
	tm := New(Config{MaxTasks: 5}, zap.NewNop())
	defer tm.Shutdown(context.Background())

	started := make(chan struct{})
	id, err := tm.SubmitTask("blocking", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, tm.CancelTask(id))
	waitForStatus(t, tm, Task{ID: id}, TaskStatusCancelled)
	assert.Error(t, tm.CancelTask(id), "finished task cannot be cancelled twice")
}

func TestTaskManager_MaxTasks(t *testing.T) {
	tm := New(Config{MaxTasks: 1}, zap.NewNop())
	release := make(chan struct{})
	_, err := tm.SubmitTask("first", func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	_, err = tm.SubmitTask("second", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrTooManyTasks)

	close(release)
	require.NoError(t, tm.Shutdown(context.Background()))

	_, err = tm.SubmitTask("after shutdown", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestTaskManager_ShutdownDeadlineCancelsTasks(t *testing.T) {
	tm := New(Config{MaxTasks: 1}, zap.NewNop())
	started := make(chan struct{})
	_, err := tm.SubmitTask("poller", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	})
	require.NoError(t, err)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = tm.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTaskManager_Cleanup(t *testing.T) {
	tm := New(Config{}, zap.NewNop())
	defer tm.Shutdown(context.Background())

	id, err := tm.SubmitTask("short", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	waitForStatus(t, tm, Task{ID: id}, TaskStatusCompleted)

	assert.Equal(t, 0, tm.CleanupTasks(time.Hour))
	assert.Equal(t, 1, tm.CleanupTasks(0))
	_, err = tm.GetTask(id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
