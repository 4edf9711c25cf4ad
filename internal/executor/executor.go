// Package executor runs batches of independent tasks, such as one fitness
// evaluation per chromosome, on a pluggable concurrency backend.
//
// A batch is built with Add, launched with Start and joined with WaitForIdle.
// Results and the first failure are read after the batch completes. Stop
// cancels the batch context and waits a bounded time for running tasks to
// return; Cancel does the same without waiting.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("executor already running")
	ErrStopTimeout    = errors.New("executor did not stop in time")
	ErrTaskPanic      = errors.New("task panicked")
)

// Task is one unit of work. It should return promptly once ctx is done.
type Task func(ctx context.Context) error

// TaskExecutor is the contract the genetic algorithm evaluates fitness
// through. Implementations differ only in how tasks are scheduled.
type TaskExecutor interface {
	Name() string
	Add(task Task)
	Clear()
	Start(ctx context.Context) error
	// WaitForIdle blocks until every task returned, the executor was
	// stopped, or timeout elapsed. It reports true only in the first case.
	// A timeout <= 0 waits without limit.
	WaitForIdle(timeout time.Duration) bool
	// Err is the first task error in completion order.
	Err() error
	// Results holds one entry per task in Add order, nil on success.
	Results() []error
	Stop(timeout time.Duration) error
	// Cancel signals the running batch like Stop but returns at once,
	// leaving tasks that ignore ctx to finish in the background.
	Cancel()
	IsRunning() bool
}

// batch carries the run state shared by every backend.
type batch struct {
	mu      sync.Mutex
	tasks   []Task
	results []error
	first   error
	running bool
	done    chan struct{}
	stopped chan struct{}
	cancel  context.CancelFunc
}

func (b *batch) Add(task Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, task)
}

func (b *batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = nil
	b.results = nil
	b.first = nil
}

// begin snapshots the queued tasks and opens a new run.
func (b *batch) begin(ctx context.Context) (context.Context, []Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil, nil, ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancel = cancel
	b.done = make(chan struct{})
	b.stopped = make(chan struct{})
	b.results = make([]error, len(b.tasks))
	b.first = nil
	return runCtx, append([]Task(nil), b.tasks...), nil
}

func (b *batch) record(index int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < len(b.results) {
		b.results[index] = err
	}
	if err != nil && b.first == nil {
		b.first = err
	}
}

func (b *batch) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	b.running = false
	b.cancel()
	close(b.done)
}

func (b *batch) channels() (done, stopped chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done, b.stopped
}

func (b *batch) WaitForIdle(timeout time.Duration) bool {
	done, stopped := b.channels()
	if done == nil {
		return true
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-done:
		select {
		case <-stopped:
			return false
		default:
			return true
		}
	case <-stopped:
		return false
	case <-expired:
		return false
	}
}

func (b *batch) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.first
}

func (b *batch) Results() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.results...)
}

func (b *batch) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Cancel is a no-op on an idle executor.
func (b *batch) Cancel() {
	b.signal()
}

// signal marks the running batch stopped and cancels its context. It returns
// the run's done channel, or nil when nothing is running.
func (b *batch) signal() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return nil
	}
	select {
	case <-b.stopped:
	default:
		close(b.stopped)
	}
	b.cancel()
	return b.done
}

// Stop cancels the running batch and waits up to timeout for its tasks to
// return. Stopping an idle executor is a no-op.
func (b *batch) Stop(timeout time.Duration) error {
	done := b.signal()
	if done == nil {
		return nil
	}
	if timeout <= 0 {
		<-done
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: waited %s", ErrStopTimeout, timeout)
	}
}

// run executes task, turning a panic into an error and skipping the task
// entirely when ctx is already done.
func run(ctx context.Context, task Task) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return task(ctx)
}
