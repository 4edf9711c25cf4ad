package storage

import (
	"time"

	"genetica/internal/model"
)

func sampleRun(id string, createdAt time.Time) model.RunRecord {
	return model.RunRecord{
		VersionedRecord:  Versioned(),
		ID:               id,
		Name:             "onemax-" + id,
		CreatedAt:        createdAt,
		State:            "termination-reached",
		Generations:      3,
		BestFitness:      0.75,
		BestChromosomeID: "c-" + id,
		BestGenes:        []string{"1", "0", "1", "1"},
		TimeEvolving:     42 * time.Millisecond,
		BestByGeneration: []float64{0.5, 0.5, 0.75},
		Operators: map[string]string{
			"selection": "elite",
			"crossover": "one-point",
		},
	}
}
