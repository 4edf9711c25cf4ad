package executor

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// TaskGroupExecutor schedules tasks as a structured goroutine group with at
// most MaxGoroutines in flight. Task errors are recorded per task and never
// cancel their siblings.
type TaskGroupExecutor struct {
	batch
	MaxGoroutines int
}

func NewTaskGroup(maxGoroutines int) *TaskGroupExecutor {
	return &TaskGroupExecutor{MaxGoroutines: maxGoroutines}
}

func (*TaskGroupExecutor) Name() string {
	return "task-group"
}

// Start launches the batch and returns without waiting for it.
func (e *TaskGroupExecutor) Start(ctx context.Context) error {
	runCtx, tasks, err := e.begin(ctx)
	if err != nil {
		return err
	}
	limit := e.MaxGoroutines
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	go func() {
		defer e.finish()
		group := pool.New().WithContext(runCtx).WithMaxGoroutines(limit)
		for i, task := range tasks {
			i, task := i, task
			group.Go(func(ctx context.Context) error {
				e.record(i, run(ctx, task))
				return nil
			})
		}
		_ = group.Wait()
	}()
	return nil
}
