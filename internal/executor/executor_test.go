package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executors() []TaskExecutor {
	return []TaskExecutor{
		NewLinear(),
		NewParallel(2, 4),
		NewTaskGroup(4),
	}
}

func TestExecutorsRunEveryTask(t *testing.T) {
	for _, exec := range executors() {
		t.Run(exec.Name(), func(t *testing.T) {
			var count atomic.Int32
			for i := 0; i < 50; i++ {
				exec.Add(func(context.Context) error {
					count.Add(1)
					return nil
				})
			}
			require.NoError(t, exec.Start(context.Background()))
			require.True(t, exec.WaitForIdle(5*time.Second))

			assert.EqualValues(t, 50, count.Load())
			assert.NoError(t, exec.Err())
			assert.Len(t, exec.Results(), 50)
			assert.False(t, exec.IsRunning())
		})
	}
}

func TestExecutorsCollectErrorsPerTask(t *testing.T) {
	errFirst := errors.New("first")
	for _, exec := range executors() {
		t.Run(exec.Name(), func(t *testing.T) {
			exec.Add(func(context.Context) error { return nil })
			exec.Add(func(context.Context) error { return errFirst })
			exec.Add(func(context.Context) error { panic("bad task") })

			require.NoError(t, exec.Start(context.Background()))
			require.True(t, exec.WaitForIdle(5*time.Second))

			results := exec.Results()
			require.Len(t, results, 3)
			assert.NoError(t, results[0])
			assert.ErrorIs(t, results[1], errFirst)
			assert.ErrorIs(t, results[2], ErrTaskPanic)
			assert.Error(t, exec.Err())
		})
	}
}

func TestExecutorsClearResetsBatch(t *testing.T) {
	for _, exec := range executors() {
		t.Run(exec.Name(), func(t *testing.T) {
			exec.Add(func(context.Context) error { return errors.New("stale") })
			require.NoError(t, exec.Start(context.Background()))
			require.True(t, exec.WaitForIdle(5*time.Second))
			require.Error(t, exec.Err())

			exec.Clear()
			assert.NoError(t, exec.Err())
			assert.Empty(t, exec.Results())

			exec.Add(func(context.Context) error { return nil })
			require.NoError(t, exec.Start(context.Background()))
			require.True(t, exec.WaitForIdle(5*time.Second))
			assert.NoError(t, exec.Err())
			assert.Len(t, exec.Results(), 1)
		})
	}
}

func TestWaitForIdleTimesOut(t *testing.T) {
	for _, exec := range executors() {
		t.Run(exec.Name(), func(t *testing.T) {
			exec.Add(func(ctx context.Context) error {
				select {
				case <-time.After(200 * time.Millisecond):
				case <-ctx.Done():
				}
				return nil
			})
			require.NoError(t, exec.Start(context.Background()))
			assert.False(t, exec.WaitForIdle(20*time.Millisecond))
			require.NoError(t, exec.Stop(time.Second))
			assert.False(t, exec.IsRunning())
		})
	}
}

func TestStopCancelsRunningTasks(t *testing.T) {
	for _, exec := range []TaskExecutor{NewParallel(1, 2), NewTaskGroup(2)} {
		t.Run(exec.Name(), func(t *testing.T) {
			started := make(chan struct{}, 4)
			for i := 0; i < 4; i++ {
				exec.Add(func(ctx context.Context) error {
					started <- struct{}{}
					<-ctx.Done()
					return ctx.Err()
				})
			}
			require.NoError(t, exec.Start(context.Background()))
			<-started

			idle := make(chan bool, 1)
			go func() { idle <- exec.WaitForIdle(0) }()

			require.NoError(t, exec.Stop(time.Second))
			assert.False(t, <-idle, "a stopped batch is not idle")
			assert.ErrorIs(t, exec.Err(), context.Canceled)
		})
	}
}

func TestStopTimesOutOnStuckTask(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	exec := NewParallel(1, 1)
	started := make(chan struct{})
	exec.Add(func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, exec.Start(context.Background()))
	<-started

	assert.ErrorIs(t, exec.Stop(20*time.Millisecond), ErrStopTimeout)
}

func TestCancelReturnsWithoutWaiting(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	exec := NewParallel(1, 1)
	started := make(chan struct{})
	exec.Add(func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, exec.Start(context.Background()))
	<-started

	begin := time.Now()
	exec.Cancel()
	assert.Less(t, time.Since(begin), 100*time.Millisecond)
	assert.False(t, exec.WaitForIdle(time.Second), "a cancelled batch is not idle")
	assert.True(t, exec.IsRunning())
}

func TestCancelIdleExecutorIsNoop(t *testing.T) {
	exec := NewTaskGroup(1)
	exec.Cancel()
	assert.False(t, exec.IsRunning())
}

func TestStartWhileRunningFails(t *testing.T) {
	release := make(chan struct{})
	exec := NewTaskGroup(1)
	exec.Add(func(context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, exec.Start(context.Background()))
	assert.ErrorIs(t, exec.Start(context.Background()), ErrAlreadyRunning)

	close(release)
	assert.True(t, exec.WaitForIdle(time.Second))
}

func TestStopIdleExecutorIsNoop(t *testing.T) {
	for _, exec := range executors() {
		assert.NoError(t, exec.Stop(time.Millisecond))
		assert.True(t, exec.WaitForIdle(time.Millisecond), "never started")
	}
}
