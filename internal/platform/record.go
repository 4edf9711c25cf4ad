package platform

import (
	"time"

	"github.com/google/uuid"

	"genetica/internal/ga"
	"genetica/internal/model"
	"genetica/internal/storage"
)

// Operators names the operators g is configured with, keyed by role.
func Operators(g *ga.GeneticAlgorithm) map[string]string {
	operators := make(map[string]string)
	if g.Selection != nil {
		operators["selection"] = g.Selection.Name()
	}
	if g.Crossover != nil {
		operators["crossover"] = g.Crossover.Name()
	}
	if g.Mutation != nil {
		operators["mutation"] = g.Mutation.Name()
	}
	if g.Reinsertion != nil {
		operators["reinsertion"] = g.Reinsertion.Name()
	}
	if g.Termination != nil {
		operators["termination"] = g.Termination.String()
	}
	if g.TaskExecutor != nil {
		operators["executor"] = g.TaskExecutor.Name()
	}
	return operators
}

// NewRunRecord captures result as a storable report under a fresh run id.
func NewRunRecord(result ga.EvolutionResult, operators map[string]string) model.RunRecord {
	record := model.RunRecord{
		VersionedRecord: storage.Versioned(),
		ID:              uuid.NewString(),
		Name:            result.Name,
		CreatedAt:       time.Now().UTC(),
		State:           result.State.String(),
		Generations:     result.GenerationsNumber(),
		BestFitness:     result.Fitness(),
		TimeEvolving:    result.TimeEvolving,
		Operators:       operators,
	}
	if best := result.BestChromosome(); best != nil {
		record.BestChromosomeID = best.ID()
		record.BestGenes = model.GeneStrings(best)
	}
	if result.Population != nil {
		for _, generation := range result.Population.Generations() {
			if !generation.Sealed() {
				continue
			}
			record.BestByGeneration = append(record.BestByGeneration, generation.Stats().Best)
		}
	}
	return record
}
