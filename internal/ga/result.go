package ga

import (
	"time"

	"genetica/internal/model"
	"genetica/internal/population"
)

// EvolutionResult summarizes a finished or stopped run.
type EvolutionResult struct {
	Name         string
	State        State
	Population   *population.Population
	TimeEvolving time.Duration
}

// Result captures the current outcome of g.
func (g *GeneticAlgorithm) Result() EvolutionResult {
	return EvolutionResult{
		Name:         g.Name,
		State:        g.State(),
		Population:   g.Population,
		TimeEvolving: g.TimeEvolving(),
	}
}

func (r EvolutionResult) BestChromosome() model.Chromosome {
	if r.Population == nil {
		return nil
	}
	return r.Population.BestChromosome()
}

// Fitness is the best fitness of the run, 0 when nothing was evaluated.
func (r EvolutionResult) Fitness() float64 {
	return model.FitnessOf(r.BestChromosome())
}

func (r EvolutionResult) GenerationsNumber() int {
	if r.Population == nil {
		return 0
	}
	return r.Population.GenerationsNumber()
}
