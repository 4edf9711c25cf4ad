package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetica/internal/model"
	"genetica/internal/randomization"
	"genetica/internal/samples"
)

func newBinaryPopulation(t *testing.T, minSize, maxSize int) *Population {
	t.Helper()
	rng := randomization.NewBasic(1)
	p, err := New(minSize, maxSize, samples.NewBinaryChromosome(rng, 8))
	require.NoError(t, err)
	return p
}

func evaluateAll(g *Generation, fitness func(i int) float64) {
	for i, c := range g.Chromosomes() {
		c.SetFitness(fitness(i))
	}
}

func TestNewValidatesArguments(t *testing.T) {
	rng := randomization.NewBasic(1)
	adam := samples.NewBinaryChromosome(rng, 4)

	_, err := New(1, 10, adam)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = New(5, 4, adam)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = New(2, 4, nil)
	assert.ErrorIs(t, err, model.ErrNilArgument)

	_, err = New(2, 4, samples.NewBinaryChromosome(rng, 1))
	assert.ErrorIs(t, err, model.ErrOutOfRange)
}

func TestCreateInitialGeneration(t *testing.T) {
	p := newBinaryPopulation(t, 4, 6)
	require.NoError(t, p.CreateInitialGeneration(randomization.NewBasic(2)))

	assert.Equal(t, 1, p.GenerationsNumber())
	current := p.CurrentGeneration()
	require.NotNil(t, current)
	assert.Equal(t, 1, current.Number())
	assert.Equal(t, 6, current.Len())
	assert.False(t, current.Sealed())
	assert.Nil(t, p.BestChromosome())
}

func TestCreateInitialGenerationResetsHistory(t *testing.T) {
	p := newBinaryPopulation(t, 2, 4)
	rng := randomization.NewBasic(3)
	require.NoError(t, p.CreateInitialGeneration(rng))
	evaluateAll(p.CurrentGeneration(), func(int) float64 { return 0.5 })
	require.NoError(t, p.EndCurrentGeneration())
	require.NoError(t, p.CreateNewGeneration(p.CurrentGeneration().Chromosomes()))
	require.Equal(t, 2, p.GenerationsNumber())

	require.NoError(t, p.CreateInitialGeneration(rng))
	assert.Equal(t, 1, p.GenerationsNumber())
	assert.Nil(t, p.BestChromosome())
}

func TestEndCurrentGenerationSortsAndTracksBest(t *testing.T) {
	p := newBinaryPopulation(t, 4, 4)
	require.NoError(t, p.CreateInitialGeneration(randomization.NewBasic(4)))

	changes := 0
	p.OnBestChromosomeChanged = func(model.Chromosome) { changes++ }

	evaluateAll(p.CurrentGeneration(), func(i int) float64 { return float64(i) / 10 })
	require.NoError(t, p.EndCurrentGeneration())

	first := p.CurrentGeneration()
	require.True(t, first.Sealed())
	fitnesses := []float64{}
	for _, c := range first.Chromosomes() {
		fitnesses = append(fitnesses, model.FitnessOf(c))
	}
	assert.Equal(t, []float64{0.3, 0.2, 0.1, 0}, fitnesses)
	assert.Equal(t, 0.3, model.FitnessOf(p.BestChromosome()))
	assert.Equal(t, 1, changes)

	stats := first.Stats()
	assert.Equal(t, 4, stats.Size)
	assert.InDelta(t, 0.15, stats.Mean, 1e-9)
	assert.Equal(t, 0.3, stats.Best)
	assert.Equal(t, 0.0, stats.Worst)
	assert.Greater(t, stats.StdDev, 0.0)

	worse := make([]model.Chromosome, 0, 4)
	for _, c := range first.Chromosomes() {
		clone := c.Clone()
		clone.SetFitness(0.05)
		worse = append(worse, clone)
	}
	require.NoError(t, p.CreateNewGeneration(worse))
	require.NoError(t, p.EndCurrentGeneration())

	assert.Equal(t, 0.3, model.FitnessOf(p.BestChromosome()), "best chromosome never regresses")
	assert.Equal(t, 0.05, model.FitnessOf(p.CurrentGeneration().BestChromosome()))
	assert.Equal(t, 1, changes)
}

func TestSealRejectsUnevaluatedAndDoubleSeal(t *testing.T) {
	p := newBinaryPopulation(t, 2, 3)
	require.NoError(t, p.CreateInitialGeneration(randomization.NewBasic(5)))

	assert.ErrorIs(t, p.EndCurrentGeneration(), ErrUnevaluated)

	evaluateAll(p.CurrentGeneration(), func(int) float64 { return 1 })
	require.NoError(t, p.EndCurrentGeneration())
	assert.ErrorIs(t, p.EndCurrentGeneration(), ErrGenerationSealed)
}

func TestSealTruncatesToMaxSize(t *testing.T) {
	p := newBinaryPopulation(t, 2, 3)
	rng := randomization.NewBasic(6)
	chromosomes := make([]model.Chromosome, 5)
	for i := range chromosomes {
		chromosomes[i] = samples.NewBinaryChromosome(rng, 8)
		chromosomes[i].SetFitness(float64(i) / 5)
	}

	require.NoError(t, p.CreateNewGeneration(chromosomes))
	require.NoError(t, p.EndCurrentGeneration())
	assert.Equal(t, 3, p.CurrentGeneration().Len())
	assert.Equal(t, 0.8, model.FitnessOf(p.CurrentGeneration().Chromosomes()[0]))
}

func TestNewGenerationValidation(t *testing.T) {
	rng := randomization.NewBasic(7)
	one := []model.Chromosome{samples.NewBinaryChromosome(rng, 4)}

	_, err := NewGeneration(1, one)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	two := append(one, samples.NewBinaryChromosome(rng, 4))
	_, err = NewGeneration(0, two)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	_, err = NewGeneration(1, []model.Chromosome{one[0], nil})
	assert.ErrorIs(t, err, model.ErrNilArgument)
}

func TestPerformanceStrategyCompactsOldGenerations(t *testing.T) {
	p := newBinaryPopulation(t, 3, 3)
	p.SetGenerationStrategy(PerformanceGenerationStrategy{Keep: 2})
	rng := randomization.NewBasic(8)

	require.NoError(t, p.CreateInitialGeneration(rng))
	for gen := 0; gen < 4; gen++ {
		evaluateAll(p.CurrentGeneration(), func(i int) float64 { return float64(gen+i) / 10 })
		require.NoError(t, p.EndCurrentGeneration())
		next := make([]model.Chromosome, 3)
		for i := range next {
			next[i] = samples.NewBinaryChromosome(rng, 8)
		}
		require.NoError(t, p.CreateNewGeneration(next))
	}

	generations := p.Generations()
	require.Len(t, generations, 5)
	assert.Equal(t, p.GenerationsNumber(), len(generations))
	for i, g := range generations {
		assert.Equal(t, i+1, g.Number())
	}
	assert.True(t, generations[0].Compacted())
	assert.Equal(t, 1, generations[0].Len())
	assert.NotNil(t, generations[0].BestChromosome())
	assert.True(t, generations[2].Compacted())
	assert.False(t, generations[3].Compacted())
	assert.False(t, generations[4].Compacted())
}

func TestTrackingStrategyKeepsEverything(t *testing.T) {
	p := newBinaryPopulation(t, 2, 2)
	assert.Equal(t, "tracking", p.GenerationStrategy().Name())
	rng := randomization.NewBasic(9)
	require.NoError(t, p.CreateInitialGeneration(rng))
	for gen := 0; gen < 3; gen++ {
		evaluateAll(p.CurrentGeneration(), func(int) float64 { return 0.1 })
		require.NoError(t, p.EndCurrentGeneration())
		require.NoError(t, p.CreateNewGeneration([]model.Chromosome{
			samples.NewBinaryChromosome(rng, 8),
			samples.NewBinaryChromosome(rng, 8),
		}))
	}
	for _, g := range p.Generations() {
		assert.False(t, g.Compacted())
		assert.Equal(t, 2, g.Len())
	}
}
