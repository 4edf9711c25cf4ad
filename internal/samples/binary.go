// Package samples carries small problems used by the CLI and by tests.
package samples

import (
	"context"
	"fmt"

	"genetica/internal/model"
	"genetica/internal/randomization"
)

// BinaryChromosome is a fixed-length bit string with genes 0 or 1.
type BinaryChromosome struct {
	model.BaseChromosome
}

func NewBinaryChromosome(rng randomization.Provider, length int) *BinaryChromosome {
	c := &BinaryChromosome{BaseChromosome: model.NewBaseChromosome(length)}
	model.Randomize(c, rng)
	return c
}

func (c *BinaryChromosome) GenerateGene(rng randomization.Provider, _ int) model.Gene {
	return model.NewGene(rng.IntN(2))
}

func (c *BinaryChromosome) CreateNew(rng randomization.Provider) model.Chromosome {
	return NewBinaryChromosome(rng, c.Length())
}

func (c *BinaryChromosome) Clone() model.Chromosome {
	return &BinaryChromosome{BaseChromosome: c.CloneBase()}
}

// FlipGene inverts the bit at index.
func (c *BinaryChromosome) FlipGene(index int) error {
	if index < 0 || index >= c.Length() {
		return fmt.Errorf("%w: gene index %d, chromosome length %d", model.ErrOutOfRange, index, c.Length())
	}
	bit, _ := c.Gene(index).Value.(int)
	return c.ReplaceGene(index, model.NewGene(1-bit))
}

// Ones counts the set bits of c.
func Ones(c model.Chromosome) int {
	total := 0
	for _, g := range c.Genes() {
		if bit, ok := g.Value.(int); ok && bit == 1 {
			total++
		}
	}
	return total
}

// OneMaxFitness scores a bit string by its share of set bits.
type OneMaxFitness struct{}

func (OneMaxFitness) Evaluate(_ context.Context, c model.Chromosome) (float64, error) {
	if c.Length() == 0 {
		return 0, fmt.Errorf("%w: empty chromosome", model.ErrOutOfRange)
	}
	return float64(Ones(c)) / float64(c.Length()), nil
}

func (OneMaxFitness) SupportsParallel() bool {
	return true
}
