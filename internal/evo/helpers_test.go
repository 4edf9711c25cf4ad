package evo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
	"genetica/internal/samples"
)

func newRNG() *randomization.Basic {
	return randomization.NewBasic(42)
}

// sealedGeneration builds a sealed generation of binary chromosomes scored
// with fitnesses in the given order.
func sealedGeneration(t *testing.T, fitnesses ...float64) *population.Generation {
	t.Helper()
	rng := newRNG()
	chromosomes := make([]model.Chromosome, len(fitnesses))
	for i, f := range fitnesses {
		chromosomes[i] = samples.NewBinaryChromosome(rng, 6)
		chromosomes[i].SetFitness(f)
	}
	g, err := population.NewGeneration(1, chromosomes)
	require.NoError(t, err)
	require.NoError(t, g.Seal(len(chromosomes)))
	return g
}

// sequence builds a permutation-style chromosome holding values in order.
func sequence(t *testing.T, values ...int) model.Chromosome {
	t.Helper()
	c := samples.NewTSPChromosome(newRNG(), len(values))
	genes := make([]model.Gene, len(values))
	for i, v := range values {
		genes[i] = model.NewGene(v)
	}
	require.NoError(t, c.ReplaceGenes(0, genes))
	return c
}

func ints(c model.Chromosome) []int {
	out := make([]int, c.Length())
	for i, g := range c.Genes() {
		out[i] = g.Value.(int)
	}
	return out
}

func newPopulation(t *testing.T, minSize, maxSize int) *population.Population {
	t.Helper()
	p, err := population.New(minSize, maxSize, samples.NewBinaryChromosome(newRNG(), 6))
	require.NoError(t, err)
	return p
}

type fakeState struct {
	generations int
	best        model.Chromosome
	current     *population.Generation
	elapsed     time.Duration
}

func (s *fakeState) GenerationsNumber() int { return s.generations }
func (s *fakeState) BestChromosome() model.Chromosome { return s.best }
func (s *fakeState) CurrentGeneration() *population.Generation { return s.current }
func (s *fakeState) TimeEvolving() time.Duration { return s.elapsed }
