package executor

import (
	"context"
	"runtime"

	"github.com/alitto/pond"
)

// ParallelTaskExecutor runs tasks on a pond worker pool sized between
// MinWorkers and MaxWorkers. A fresh pool is created per batch.
type ParallelTaskExecutor struct {
	batch
	MinWorkers int
	MaxWorkers int
}

// NewParallel returns a pool-backed executor. Non-positive bounds default to
// one idle worker and GOMAXPROCS workers at most.
func NewParallel(minWorkers, maxWorkers int) *ParallelTaskExecutor {
	return &ParallelTaskExecutor{MinWorkers: minWorkers, MaxWorkers: maxWorkers}
}

func (*ParallelTaskExecutor) Name() string {
	return "parallel"
}

func (e *ParallelTaskExecutor) bounds() (int, int) {
	maxWorkers := e.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	minWorkers := e.MinWorkers
	if minWorkers <= 0 {
		minWorkers = 1
	}
	if minWorkers > maxWorkers {
		minWorkers = maxWorkers
	}
	return minWorkers, maxWorkers
}

// Start submits the batch and returns without waiting for it.
func (e *ParallelTaskExecutor) Start(ctx context.Context) error {
	runCtx, tasks, err := e.begin(ctx)
	if err != nil {
		return err
	}
	minWorkers, maxWorkers := e.bounds()
	workers := pond.New(maxWorkers, len(tasks)+1, pond.MinWorkers(minWorkers))

	go func() {
		defer e.finish()
		for i, task := range tasks {
			i, task := i, task
			workers.Submit(func() {
				e.record(i, run(runCtx, task))
			})
		}
		workers.StopAndWait()
	}()
	return nil
}
