// Package genetica is the public surface of the genetic algorithm engine:
// the core types for embedding an algorithm in a program, and a Client that
// runs the bundled sample problems and keeps reports of past runs.
package genetica

import (
	"genetica/internal/evo"
	"genetica/internal/executor"
	"genetica/internal/ga"
	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
)

type (
	Gene        = model.Gene
	Chromosome  = model.Chromosome
	RunRecord   = model.RunRecord
	Population  = population.Population
	Generation  = population.Generation
	Fitness     = evo.Fitness
	Selection   = evo.Selection
	Crossover   = evo.Crossover
	Mutation    = evo.Mutation
	Reinsertion = evo.Reinsertion
	Termination = evo.Termination

	OperatorsStrategy = evo.OperatorsStrategy
	TaskExecutor      = executor.TaskExecutor
	RandomProvider    = randomization.Provider

	GeneticAlgorithm = ga.GeneticAlgorithm
	State            = ga.State
	Hooks            = ga.Hooks
	EvolutionResult  = ga.EvolutionResult
)

const (
	StateNotStarted         = ga.StateNotStarted
	StateStarted            = ga.StateStarted
	StateStopped            = ga.StateStopped
	StateResumed            = ga.StateResumed
	StateTerminationReached = ga.StateTerminationReached
)

var (
	ErrInvalidOperation  = ga.ErrInvalidOperation
	ErrTimeout           = ga.ErrTimeout
	ErrFitnessOutOfRange = ga.ErrFitnessOutOfRange
	ErrNilArgument       = model.ErrNilArgument
	ErrOutOfRange        = model.ErrOutOfRange
)

// NewPopulation bounds every generation to [minSize, maxSize] chromosomes
// shaped like adam.
func NewPopulation(minSize, maxSize int, adam Chromosome) (*Population, error) {
	return population.New(minSize, maxSize, adam)
}

func NewGeneticAlgorithm(pop *Population, fitness Fitness, selection Selection, crossover Crossover, mutation Mutation) (*GeneticAlgorithm, error) {
	return ga.New(pop, fitness, selection, crossover, mutation)
}

func NewRandomProvider(seed int64) RandomProvider {
	return randomization.NewBasic(seed)
}

// Operators lists the registered operator names keyed by family.
func Operators() map[string][]string {
	return evo.ListOperators()
}
