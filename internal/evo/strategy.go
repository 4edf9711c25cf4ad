package evo

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
)

// OperatorsStrategy applies crossover and mutation across a generation's
// parents and offspring. Implementations differ in scheduling only.
type OperatorsStrategy interface {
	Cross(ctx context.Context, rng randomization.Provider, pop *population.Population, crossover Crossover, probability float64, parents []model.Chromosome) ([]model.Chromosome, error)
	Mutate(ctx context.Context, rng randomization.Provider, mutation Mutation, probability float64, chromosomes []model.Chromosome) error
}

// crossGroups walks parents in consecutive groups of ParentsNumber up to
// MinSize and rolls the crossover probability for each complete group. The
// returned groups are the ones that will be crossed.
func crossGroups(rng randomization.Provider, minSize int, crossover Crossover, probability float64, parents []model.Chromosome) [][]model.Chromosome {
	arity := crossover.ParentsNumber()
	var groups [][]model.Chromosome
	for i := 0; i < minSize; i += arity {
		if i+arity > len(parents) {
			break
		}
		if rng.Float64() < probability {
			groups = append(groups, parents[i:i+arity])
		}
	}
	return groups
}

func crossGroup(rng randomization.Provider, crossover Crossover, group []model.Chromosome) ([]model.Chromosome, error) {
	children, err := crossover.Cross(rng, group)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(group))
	for i, parent := range group {
		ids[i] = parent.ID()
	}
	for _, child := range children {
		child.SetParentIDs(ids...)
	}
	return children, nil
}

// DefaultOperatorsStrategy applies operators sequentially on the caller's
// goroutine.
type DefaultOperatorsStrategy struct{}

func (DefaultOperatorsStrategy) Cross(ctx context.Context, rng randomization.Provider, pop *population.Population, crossover Crossover, probability float64, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offspring := make([]model.Chromosome, 0, pop.MinSize())
	arity := crossover.ParentsNumber()
	for i := 0; i < pop.MinSize(); i += arity {
		if i+arity > len(parents) {
			break
		}
		if rng.Float64() >= probability {
			continue
		}
		children, err := crossGroup(rng, crossover, parents[i:i+arity])
		if err != nil {
			return nil, err
		}
		offspring = append(offspring, children...)
	}
	return offspring, nil
}

func (DefaultOperatorsStrategy) Mutate(ctx context.Context, rng randomization.Provider, mutation Mutation, probability float64, chromosomes []model.Chromosome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range chromosomes {
		if err := mutation.Mutate(rng, c, probability); err != nil {
			return err
		}
	}
	return nil
}

// ParallelOperatorsStrategy fans crossover groups and mutations out over a
// bounded goroutine pool. Probability rolls happen on the caller's goroutine
// so the set of crossed groups follows the same rule as the sequential
// strategy. Offspring order is not preserved. The Provider must be safe for
// concurrent use.
type ParallelOperatorsStrategy struct {
	MaxGoroutines int
}

func (s ParallelOperatorsStrategy) workers() int {
	if s.MaxGoroutines > 0 {
		return s.MaxGoroutines
	}
	return runtime.GOMAXPROCS(0)
}

func (s ParallelOperatorsStrategy) Cross(ctx context.Context, rng randomization.Provider, pop *population.Population, crossover Crossover, probability float64, parents []model.Chromosome) ([]model.Chromosome, error) {
	groups := crossGroups(rng, pop.MinSize(), crossover, probability, parents)

	var mu sync.Mutex
	offspring := make([]model.Chromosome, 0, pop.MinSize())
	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.workers()).
		WithFirstError().
		WithCancelOnError()
	for _, group := range groups {
		group := group
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			children, err := crossGroup(rng, crossover, group)
			if err != nil {
				return err
			}
			mu.Lock()
			offspring = append(offspring, children...)
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return offspring, nil
}

func (s ParallelOperatorsStrategy) Mutate(ctx context.Context, rng randomization.Provider, mutation Mutation, probability float64, chromosomes []model.Chromosome) error {
	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.workers()).
		WithFirstError().
		WithCancelOnError()
	for _, c := range chromosomes {
		c := c
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return mutation.Mutate(rng, c, probability)
		})
	}
	return p.Wait()
}
