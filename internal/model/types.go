package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted report of one evolution run. Populations are
// never stored, only the summary of what a run produced.
type RunRecord struct {
	VersionedRecord
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	CreatedAt        time.Time         `json:"created_at"`
	State            string            `json:"state"`
	Generations      int               `json:"generations"`
	BestFitness      float64           `json:"best_fitness"`
	BestChromosomeID string            `json:"best_chromosome_id,omitempty"`
	BestGenes        []string          `json:"best_genes,omitempty"`
	TimeEvolving     time.Duration     `json:"time_evolving"`
	BestByGeneration []float64         `json:"best_by_generation,omitempty"`
	Operators        map[string]string `json:"operators,omitempty"`
}
