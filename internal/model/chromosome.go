package model

import (
	"fmt"

	"github.com/google/uuid"

	"genetica/internal/randomization"
)

// Chromosome is one candidate solution. Implementations usually embed
// BaseChromosome and supply GenerateGene, CreateNew and Clone.
//
// Any gene replacement clears the cached fitness.
type Chromosome interface {
	ID() string
	Length() int
	Gene(index int) Gene
	Genes() []Gene
	ReplaceGene(index int, gene Gene) error
	ReplaceGenes(startIndex int, genes []Gene) error
	GenerateGene(rng randomization.Provider, index int) Gene
	CreateNew(rng randomization.Provider) Chromosome
	Clone() Chromosome
	Fitness() (float64, bool)
	SetFitness(value float64)
	ClearFitness()
	ParentIDs() []string
	SetParentIDs(ids ...string)
}

// BaseChromosome implements the gene storage, fitness cache and lineage
// parts of Chromosome.
type BaseChromosome struct {
	id        string
	genes     []Gene
	fitness   float64
	evaluated bool
	parentIDs []string
}

func NewBaseChromosome(length int) BaseChromosome {
	return BaseChromosome{
		id:    uuid.NewString(),
		genes: make([]Gene, length),
	}
}

func (c *BaseChromosome) ID() string {
	return c.id
}

func (c *BaseChromosome) Length() int {
	return len(c.genes)
}

func (c *BaseChromosome) Gene(index int) Gene {
	return c.genes[index]
}

func (c *BaseChromosome) Genes() []Gene {
	return append([]Gene(nil), c.genes...)
}

func (c *BaseChromosome) ReplaceGene(index int, gene Gene) error {
	if index < 0 || index >= len(c.genes) {
		return fmt.Errorf("%w: gene index %d, chromosome length %d", ErrOutOfRange, index, len(c.genes))
	}
	c.genes[index] = gene
	c.evaluated = false
	return nil
}

func (c *BaseChromosome) ReplaceGenes(startIndex int, genes []Gene) error {
	if startIndex < 0 || startIndex+len(genes) > len(c.genes) {
		return fmt.Errorf("%w: %d genes from index %d, chromosome length %d", ErrOutOfRange, len(genes), startIndex, len(c.genes))
	}
	copy(c.genes[startIndex:], genes)
	c.evaluated = false
	return nil
}

func (c *BaseChromosome) Fitness() (float64, bool) {
	return c.fitness, c.evaluated
}

func (c *BaseChromosome) SetFitness(value float64) {
	c.fitness = value
	c.evaluated = true
}

func (c *BaseChromosome) ClearFitness() {
	c.fitness = 0
	c.evaluated = false
}

func (c *BaseChromosome) ParentIDs() []string {
	return append([]string(nil), c.parentIDs...)
}

func (c *BaseChromosome) SetParentIDs(ids ...string) {
	c.parentIDs = append([]string(nil), ids...)
}

// CloneBase copies genes, fitness and lineage under a fresh id.
func (c *BaseChromosome) CloneBase() BaseChromosome {
	return BaseChromosome{
		id:        uuid.NewString(),
		genes:     append([]Gene(nil), c.genes...),
		fitness:   c.fitness,
		evaluated: c.evaluated,
		parentIDs: append([]string(nil), c.parentIDs...),
	}
}

// Randomize fills every gene of c with c.GenerateGene.
func Randomize(c Chromosome, rng randomization.Provider) {
	for i := 0; i < c.Length(); i++ {
		_ = c.ReplaceGene(i, c.GenerateGene(rng, i))
	}
}

// FitnessOf returns the fitness of c, or 0 when it was never evaluated.
func FitnessOf(c Chromosome) float64 {
	if c == nil {
		return 0
	}
	f, _ := c.Fitness()
	return f
}

// HasFitness reports whether c carries an evaluated fitness.
func HasFitness(c Chromosome) bool {
	if c == nil {
		return false
	}
	_, ok := c.Fitness()
	return ok
}

// GeneStrings renders every gene of c, used for reports and cache keys.
func GeneStrings(c Chromosome) []string {
	genes := c.Genes()
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.String()
	}
	return out
}
