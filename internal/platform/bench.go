// Package platform hosts genetic algorithm runs: it executes them, lets
// callers stop them by name and keeps a report of each in a store.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"genetica/internal/ga"
	"genetica/internal/model"
	"genetica/internal/storage"
)

var (
	ErrNotStarted  = errors.New("bench is not initialized")
	ErrRunActive   = errors.New("run already active")
	ErrRunNotFound = errors.New("run not active")
)

type Config struct {
	Store  storage.Store
	Logger *slog.Logger

	// MaxConcurrent bounds how many runs Compare evolves at once. Zero means
	// one goroutine per run.
	MaxConcurrent int

	// EvaluationTimeout is the per-generation budget for parallel fitness
	// evaluation. Zero means no budget.
	EvaluationTimeout time.Duration
}

// Outcome is one finished run: its result, the report saved for it and the
// error Start returned, if any.
type Outcome struct {
	Result ga.EvolutionResult
	Record model.RunRecord
	Err    error
}

type Bench struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.RWMutex
	started bool
	runs    map[string]*ga.GeneticAlgorithm

	config Config
}

func NewBench(cfg Config) *Bench {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bench{
		store:  cfg.Store,
		logger: logger,
		runs:   make(map[string]*ga.GeneticAlgorithm),
		config: cfg,
	}
}

func (b *Bench) Init(ctx context.Context) error {
	if b.store == nil {
		return fmt.Errorf("store is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	if err := b.store.Init(ctx); err != nil {
		return err
	}
	b.started = true
	return nil
}

func (b *Bench) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

// Close releases the store if it holds resources.
func (b *Bench) Close() error {
	b.mu.Lock()
	b.started = false
	b.mu.Unlock()
	return storage.CloseIfSupported(b.store)
}

// Run evolves g from scratch to completion and saves its report. The report
// is saved even when the run fails, as long as at least one generation was
// created.
func (b *Bench) Run(ctx context.Context, g *ga.GeneticAlgorithm) (Outcome, error) {
	return b.RunWithTimeout(ctx, g, b.config.EvaluationTimeout)
}

// RunWithTimeout is Run with its own per-generation evaluation budget.
func (b *Bench) RunWithTimeout(ctx context.Context, g *ga.GeneticAlgorithm, timeout time.Duration) (Outcome, error) {
	if g == nil {
		return Outcome{}, fmt.Errorf("%w: algorithm", model.ErrNilArgument)
	}
	if !b.Started() {
		return Outcome{}, ErrNotStarted
	}
	if err := b.registerRun(g); err != nil {
		return Outcome{}, err
	}
	runErr := g.StartWithTimeout(ctx, timeout)
	b.unregisterRun(g.Name)

	result := g.Result()
	outcome := Outcome{
		Result: result,
		Record: NewRunRecord(result, Operators(g)),
		Err:    runErr,
	}
	b.logger.Debug("run finished",
		"run", g.Name,
		"state", result.State.String(),
		"generations", result.GenerationsNumber(),
		"best_fitness", result.Fitness(),
		"elapsed", result.TimeEvolving,
	)

	if result.GenerationsNumber() > 0 {
		if err := b.store.SaveRun(ctx, outcome.Record); err != nil {
			return outcome, errors.Join(runErr, fmt.Errorf("save run %s: %w", g.Name, err))
		}
	}
	return outcome, runErr
}

// Compare evolves every algorithm concurrently and returns their outcomes
// ordered by best fitness, highest first. Each algorithm must own its
// population, executor and random provider. Failed runs are still reported;
// their errors are joined into the returned error.
func (b *Bench) Compare(ctx context.Context, algorithms ...*ga.GeneticAlgorithm) ([]Outcome, error) {
	return b.CompareWithTimeout(ctx, b.config.EvaluationTimeout, algorithms...)
}

// CompareWithTimeout is Compare with its own per-generation evaluation
// budget.
func (b *Bench) CompareWithTimeout(ctx context.Context, timeout time.Duration, algorithms ...*ga.GeneticAlgorithm) ([]Outcome, error) {
	names := make(map[string]struct{}, len(algorithms))
	for i, g := range algorithms {
		if g == nil {
			return nil, fmt.Errorf("%w: algorithm at index %d", model.ErrNilArgument, i)
		}
		if _, exists := names[g.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate run name %q", ErrRunActive, g.Name)
		}
		names[g.Name] = struct{}{}
	}

	workers := b.config.MaxConcurrent
	if workers <= 0 {
		workers = len(algorithms)
	}
	p := pool.NewWithResults[Outcome]().
		WithContext(ctx).
		WithMaxGoroutines(max(workers, 1))
	for _, g := range algorithms {
		g := g
		p.Go(func(ctx context.Context) (Outcome, error) {
			outcome, err := b.RunWithTimeout(ctx, g, timeout)
			if outcome.Result.Name == "" {
				outcome.Result.Name = g.Name
			}
			outcome.Err = err
			return outcome, nil
		})
	}
	outcomes, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		fi, fj := outcomes[i].Result.Fitness(), outcomes[j].Result.Fitness()
		if fi != fj {
			return fi > fj
		}
		return outcomes[i].Result.Name < outcomes[j].Result.Name
	})
	var errs []error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			errs = append(errs, fmt.Errorf("run %s: %w", outcome.Result.Name, outcome.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// StopRun asks the active run named name to stop after its current
// generation.
func (b *Bench) StopRun(name string) error {
	b.mu.RLock()
	g, ok := b.runs[name]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, name)
	}
	return g.Stop()
}

func (b *Bench) ActiveRuns() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.runs))
	for name := range b.runs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runs lists stored reports, newest first.
func (b *Bench) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if !b.Started() {
		return nil, ErrNotStarted
	}
	return b.store.ListRuns(ctx, limit)
}

func (b *Bench) registerRun(g *ga.GeneticAlgorithm) error {
	if g.Name == "" {
		return fmt.Errorf("run name is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.runs[g.Name]; exists {
		return fmt.Errorf("%w: %s", ErrRunActive, g.Name)
	}
	b.runs[g.Name] = g
	return nil
}

func (b *Bench) unregisterRun(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.runs, name)
}
