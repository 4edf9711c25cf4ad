package executor

import (
	"context"
	"time"
)

// LinearTaskExecutor runs every task on the caller's goroutine inside Start.
// WaitForIdle then reports whether the batch fit in the timeout.
type LinearTaskExecutor struct {
	batch
	elapsed time.Duration
}

func NewLinear() *LinearTaskExecutor {
	return &LinearTaskExecutor{}
}

func (*LinearTaskExecutor) Name() string {
	return "linear"
}

func (e *LinearTaskExecutor) Start(ctx context.Context) error {
	runCtx, tasks, err := e.begin(ctx)
	if err != nil {
		return err
	}
	defer e.finish()

	started := time.Now()
	for i, task := range tasks {
		e.record(i, run(runCtx, task))
	}

	e.mu.Lock()
	e.elapsed = time.Since(started)
	e.mu.Unlock()
	return nil
}

func (e *LinearTaskExecutor) WaitForIdle(timeout time.Duration) bool {
	if !e.batch.WaitForIdle(0) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return timeout <= 0 || e.elapsed <= timeout
}
