package evo

import (
	"time"

	"genetica/internal/model"
	"genetica/internal/population"
)

// EvolutionState is the read-only view of a run handed to terminations.
type EvolutionState interface {
	GenerationsNumber() int
	BestChromosome() model.Chromosome
	CurrentGeneration() *population.Generation
	TimeEvolving() time.Duration
}
