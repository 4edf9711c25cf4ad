// Package ga runs the generation loop of a genetic algorithm: selection,
// crossover, mutation, reinsertion, fitness evaluation and termination, with
// cooperative stop and resume.
package ga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"genetica/internal/evo"
	"genetica/internal/executor"
	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
)

const (
	DefaultCrossoverProbability = 0.75
	DefaultMutationProbability  = 0.1
	DefaultStopTimeout          = 60 * time.Second
)

// GeneticAlgorithm evolves a Population. Exported fields may be replaced
// between runs; they must not change while the algorithm is running.
//
// One goroutine evolves an instance at a time. Stop, State and the read
// accessors are safe to call from other goroutines.
type GeneticAlgorithm struct {
	Name string

	Population  *population.Population
	Fitness     evo.Fitness
	Selection   evo.Selection
	Crossover   evo.Crossover
	Mutation    evo.Mutation
	Reinsertion evo.Reinsertion
	Termination evo.Termination

	OperatorsStrategy evo.OperatorsStrategy
	TaskExecutor      executor.TaskExecutor
	Random            randomization.Provider
	Logger            *slog.Logger

	CrossoverProbability float64
	MutationProbability  float64

	mu            sync.Mutex
	state         State
	stopRequested bool
	evaluating    executor.TaskExecutor
	hooks         []Hooks

	timeEvolving atomic.Int64
}

// New builds an algorithm with elitist reinsertion, a one-generation
// termination, sequential operators, a linear task executor and a time
// seeded random provider.
func New(pop *population.Population, fitness evo.Fitness, selection evo.Selection, crossover evo.Crossover, mutation evo.Mutation) (*GeneticAlgorithm, error) {
	switch {
	case pop == nil:
		return nil, fmt.Errorf("%w: population", model.ErrNilArgument)
	case fitness == nil:
		return nil, fmt.Errorf("%w: fitness", model.ErrNilArgument)
	case selection == nil:
		return nil, fmt.Errorf("%w: selection", model.ErrNilArgument)
	case crossover == nil:
		return nil, fmt.Errorf("%w: crossover", model.ErrNilArgument)
	case mutation == nil:
		return nil, fmt.Errorf("%w: mutation", model.ErrNilArgument)
	}

	return &GeneticAlgorithm{
		Population:           pop,
		Fitness:              fitness,
		Selection:            selection,
		Crossover:            crossover,
		Mutation:             mutation,
		Reinsertion:          evo.ElitistReinsertion{},
		Termination:          evo.GenerationNumberTermination{N: 1},
		OperatorsStrategy:    evo.DefaultOperatorsStrategy{},
		TaskExecutor:         executor.NewLinear(),
		Random:               randomization.NewTimeSeeded(),
		Logger:               slog.Default(),
		CrossoverProbability: DefaultCrossoverProbability,
		MutationProbability:  DefaultMutationProbability,
		state:                StateNotStarted,
	}, nil
}

func (g *GeneticAlgorithm) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *GeneticAlgorithm) IsRunning() bool {
	return g.State().Running()
}

func (g *GeneticAlgorithm) GenerationsNumber() int {
	return g.Population.GenerationsNumber()
}

// BestChromosome is the fittest chromosome observed in any sealed generation.
func (g *GeneticAlgorithm) BestChromosome() model.Chromosome {
	return g.Population.BestChromosome()
}

func (g *GeneticAlgorithm) CurrentGeneration() *population.Generation {
	return g.Population.CurrentGeneration()
}

// TimeEvolving is the wall-clock time spent evolving in the current run,
// summed over its resumes. Start resets it.
func (g *GeneticAlgorithm) TimeEvolving() time.Duration {
	return time.Duration(g.timeEvolving.Load())
}

func (g *GeneticAlgorithm) addTime(d time.Duration) {
	g.timeEvolving.Add(int64(d))
}

// Start creates a fresh initial generation and evolves until the
// termination is reached, Stop is called or an error occurs.
func (g *GeneticAlgorithm) Start(ctx context.Context) error {
	return g.StartWithTimeout(ctx, 0)
}

// StartWithTimeout is Start with a per-generation budget for parallel
// fitness evaluation. A timeout <= 0 means no budget.
func (g *GeneticAlgorithm) StartWithTimeout(ctx context.Context, timeout time.Duration) error {
	if err := g.validate(); err != nil {
		return err
	}
	if err := g.enter(StateStarted); err != nil {
		return err
	}

	started := time.Now()
	g.timeEvolving.Store(0)
	if err := g.Population.CreateInitialGeneration(g.Random); err != nil {
		return g.fail(err)
	}
	g.addTime(time.Since(started))
	g.logger().Debug("evolution started", "name", g.Name, "min_size", g.Population.MinSize(), "max_size", g.Population.MaxSize())

	return g.evolve(ctx, timeout)
}

// Resume continues evolving the existing population. A generation left
// unsealed, by a stop during evaluation or by another algorithm instance,
// is finished first.
func (g *GeneticAlgorithm) Resume(ctx context.Context) error {
	return g.ResumeWithTimeout(ctx, 0)
}

func (g *GeneticAlgorithm) ResumeWithTimeout(ctx context.Context, timeout time.Duration) error {
	if g.IsRunning() {
		return fmt.Errorf("%w: genetic algorithm is already running", ErrInvalidOperation)
	}
	if g.Population == nil || g.Population.GenerationsNumber() == 0 {
		return fmt.Errorf("%w: attempt to resume a genetic algorithm which was not yet started", ErrInvalidOperation)
	}
	if err := g.validate(); err != nil {
		return err
	}
	current := g.Population.CurrentGeneration()
	if current.Sealed() && g.Termination.HasReached(g) {
		return fmt.Errorf("%w: termination %s already reached; set a new or extended termination before resuming",
			ErrInvalidOperation, g.Termination)
	}
	if err := g.enter(StateResumed); err != nil {
		return err
	}
	g.logger().Debug("evolution resumed", "name", g.Name, "generation", g.Population.GenerationsNumber())

	return g.evolve(ctx, timeout)
}

// Stop asks the running evolution to halt after the current generation.
// An in-flight parallel fitness evaluation is cancelled within
// DefaultStopTimeout.
func (g *GeneticAlgorithm) Stop() error {
	return g.StopWithTimeout(DefaultStopTimeout)
}

func (g *GeneticAlgorithm) StopWithTimeout(timeout time.Duration) error {
	if g.Population == nil || g.Population.GenerationsNumber() == 0 {
		return fmt.Errorf("%w: attempt to stop a genetic algorithm which was not yet started", ErrInvalidOperation)
	}

	g.mu.Lock()
	g.stopRequested = true
	inFlight := g.evaluating
	g.mu.Unlock()

	if inFlight != nil {
		if err := inFlight.Stop(timeout); err != nil {
			return fmt.Errorf("stop fitness evaluation: %w", err)
		}
	}
	return nil
}

func (g *GeneticAlgorithm) validate() error {
	switch {
	case g.Population == nil:
		return fmt.Errorf("%w: population", model.ErrNilArgument)
	case g.Fitness == nil:
		return fmt.Errorf("%w: fitness", model.ErrNilArgument)
	case g.Selection == nil:
		return fmt.Errorf("%w: selection", model.ErrNilArgument)
	case g.Crossover == nil:
		return fmt.Errorf("%w: crossover", model.ErrNilArgument)
	case g.Mutation == nil:
		return fmt.Errorf("%w: mutation", model.ErrNilArgument)
	case g.Reinsertion == nil:
		return fmt.Errorf("%w: reinsertion", model.ErrNilArgument)
	case g.Termination == nil:
		return fmt.Errorf("%w: termination", model.ErrNilArgument)
	case g.OperatorsStrategy == nil:
		return fmt.Errorf("%w: operators strategy", model.ErrNilArgument)
	case g.TaskExecutor == nil:
		return fmt.Errorf("%w: task executor", model.ErrNilArgument)
	case g.Random == nil:
		return fmt.Errorf("%w: random provider", model.ErrNilArgument)
	}
	if g.Population.MinSize() < g.Crossover.ParentsNumber() {
		return fmt.Errorf("%w: population minimum size %d is below crossover parents number %d",
			model.ErrOutOfRange, g.Population.MinSize(), g.Crossover.ParentsNumber())
	}
	if !validProbability(g.CrossoverProbability) {
		return fmt.Errorf("%w: crossover probability %v", model.ErrOutOfRange, g.CrossoverProbability)
	}
	if !validProbability(g.MutationProbability) {
		return fmt.Errorf("%w: mutation probability %v", model.ErrOutOfRange, g.MutationProbability)
	}
	return nil
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func (g *GeneticAlgorithm) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// enter moves into a running state, refusing when a run is in progress.
func (g *GeneticAlgorithm) enter(state State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Running() {
		return fmt.Errorf("%w: genetic algorithm is already running", ErrInvalidOperation)
	}
	g.state = state
	g.stopRequested = false
	return nil
}

func (g *GeneticAlgorithm) setState(state State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
}

func (g *GeneticAlgorithm) stopRequestedNow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stopRequested
}

func (g *GeneticAlgorithm) stopped() {
	g.setState(StateStopped)
	g.logger().Debug("evolution stopped", "name", g.Name, "generation", g.Population.GenerationsNumber())
	g.fireStopped()
}

// fail leaves the run stopped and returns err.
func (g *GeneticAlgorithm) fail(err error) error {
	g.setState(StateStopped)
	g.logger().Debug("evolution failed", "name", g.Name, "error", err)
	g.fireStopped()
	return err
}

func (g *GeneticAlgorithm) evolve(ctx context.Context, timeout time.Duration) error {
	if !g.Population.CurrentGeneration().Sealed() {
		done, err := g.endCurrentGeneration(ctx, timeout, time.Now())
		if done || err != nil {
			return err
		}
	}

	for {
		if g.stopRequestedNow() {
			g.stopped()
			return nil
		}
		if err := ctx.Err(); err != nil {
			return g.fail(err)
		}
		done, err := g.evolveOneGeneration(ctx, timeout)
		if done || err != nil {
			return err
		}
	}
}

func (g *GeneticAlgorithm) evolveOneGeneration(ctx context.Context, timeout time.Duration) (bool, error) {
	started := time.Now()

	parents, err := g.Selection.SelectChromosomes(g.Random, g.Population.MinSize(), g.Population.CurrentGeneration())
	if err != nil {
		return true, g.fail(err)
	}
	offspring, err := g.OperatorsStrategy.Cross(ctx, g.Random, g.Population, g.Crossover, g.CrossoverProbability, parents)
	if err != nil {
		return true, g.fail(err)
	}
	if err := g.OperatorsStrategy.Mutate(ctx, g.Random, g.Mutation, g.MutationProbability, offspring); err != nil {
		return true, g.fail(err)
	}
	next, err := g.Reinsertion.SelectChromosomes(g.Random, g.Population, offspring, parents)
	if err != nil {
		return true, g.fail(err)
	}
	if err := g.Population.CreateNewGeneration(next); err != nil {
		return true, g.fail(err)
	}

	return g.endCurrentGeneration(ctx, timeout, started)
}

// endCurrentGeneration evaluates and seals the current generation, then
// checks the termination. It reports true when the run is over.
func (g *GeneticAlgorithm) endCurrentGeneration(ctx context.Context, timeout time.Duration, started time.Time) (bool, error) {
	err := g.evaluateFitness(ctx, timeout)
	if errors.Is(err, errStopRequested) {
		g.addTime(time.Since(started))
		g.stopped()
		return true, nil
	}
	if err != nil {
		g.addTime(time.Since(started))
		return true, g.fail(err)
	}
	if err := g.Population.EndCurrentGeneration(); err != nil {
		return true, g.fail(err)
	}
	g.addTime(time.Since(started))

	current := g.Population.CurrentGeneration()
	g.logger().Debug("generation ran",
		"name", g.Name,
		"generation", current.Number(),
		"best_fitness", current.Stats().Best,
		"elapsed", g.TimeEvolving(),
	)
	g.fireGenerationRan()

	if g.Termination.HasReached(g) {
		g.setState(StateTerminationReached)
		g.logger().Debug("termination reached", "name", g.Name, "termination", g.Termination.String(), "generation", current.Number())
		g.fireTerminationReached()
		return true, nil
	}
	return false, nil
}

// evaluateFitness scores every chromosome of the current generation that
// has no fitness yet. Fitness components that support parallel evaluation
// go through the task executor.
func (g *GeneticAlgorithm) evaluateFitness(ctx context.Context, timeout time.Duration) error {
	pending := unevaluated(g.Population.CurrentGeneration().Chromosomes())
	if len(pending) == 0 {
		return nil
	}
	if !g.Fitness.SupportsParallel() {
		for _, c := range pending {
			if err := g.evaluate(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}
	return g.evaluateParallel(ctx, timeout, pending)
}

func (g *GeneticAlgorithm) evaluateParallel(ctx context.Context, timeout time.Duration, pending []model.Chromosome) error {
	exec := g.TaskExecutor
	exec.Clear()
	for _, c := range pending {
		c := c
		exec.Add(func(ctx context.Context) error {
			return g.evaluate(ctx, c)
		})
	}

	g.mu.Lock()
	if g.stopRequested {
		g.mu.Unlock()
		return errStopRequested
	}
	g.evaluating = exec
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.evaluating = nil
		g.mu.Unlock()
	}()

	if err := exec.Start(ctx); err != nil {
		return err
	}
	idle := exec.WaitForIdle(timeout)

	if g.stopRequestedNow() {
		return errStopRequested
	}
	if err := ctx.Err(); err != nil {
		exec.Cancel()
		return err
	}
	if !idle {
		// Evaluations that ignore ctx are abandoned; the run must not
		// outlive its budget waiting on them.
		exec.Cancel()
		if exec.IsRunning() {
			g.logger().Warn("abandoning in-flight fitness evaluations after timeout", "name", g.Name, "timeout", timeout)
		}
		return fmt.Errorf("%w: generation %d exceeded %s", ErrTimeout, g.Population.CurrentGeneration().Number(), timeout)
	}
	if err := exec.Err(); err != nil {
		var fitnessErr *FitnessError
		if errors.As(err, &fitnessErr) {
			return err
		}
		return &FitnessError{Fitness: fmt.Sprintf("%T", g.Fitness), Err: err}
	}
	return nil
}

// evaluate scores c and stores the fitness on success.
func (g *GeneticAlgorithm) evaluate(ctx context.Context, c model.Chromosome) error {
	value, err := g.Fitness.Evaluate(ctx, c)
	if err != nil {
		return &FitnessError{Fitness: fmt.Sprintf("%T", g.Fitness), ChromosomeID: c.ID(), Err: err}
	}
	// An abandoned evaluation must not touch a population the run has left.
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validProbability(value) {
		return &FitnessError{
			Fitness:      fmt.Sprintf("%T", g.Fitness),
			ChromosomeID: c.ID(),
			Value:        value,
			Err:          fmt.Errorf("%w: %v", ErrFitnessOutOfRange, value),
		}
	}
	c.SetFitness(value)
	return nil
}

// unevaluated returns the chromosomes without fitness, each once.
func unevaluated(chromosomes []model.Chromosome) []model.Chromosome {
	seen := make(map[string]struct{}, len(chromosomes))
	pending := make([]model.Chromosome, 0, len(chromosomes))
	for _, c := range chromosomes {
		if model.HasFitness(c) {
			continue
		}
		if _, dup := seen[c.ID()]; dup {
			continue
		}
		seen[c.ID()] = struct{}{}
		pending = append(pending, c)
	}
	return pending
}
