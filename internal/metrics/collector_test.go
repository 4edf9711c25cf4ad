package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetica/internal/evo"
	"genetica/internal/ga"
	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
	"genetica/internal/samples"
)

func newOneMax(t *testing.T, generations int) *ga.GeneticAlgorithm {
	t.Helper()
	rng := randomization.NewBasic(5)
	pop, err := population.New(10, 10, samples.NewBinaryChromosome(rng, 12))
	require.NoError(t, err)
	g, err := ga.New(pop, samples.OneMaxFitness{}, evo.EliteSelection{}, evo.NewRandomOnePointCrossover(), evo.FlipBitMutation{})
	require.NoError(t, err)
	g.Random = rng
	g.Termination = evo.GenerationNumberTermination{N: generations}
	return g
}

func TestCollectorTracksRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)

	g := newOneMax(t, 6)
	collector.Attach(g, "onemax")
	require.NoError(t, g.Start(context.Background()))

	assert.Equal(t, 6.0, testutil.ToFloat64(collector.generations.WithLabelValues("onemax")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.terminations.WithLabelValues("onemax")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.stops.WithLabelValues("onemax")))
	assert.Equal(t, model.FitnessOf(g.BestChromosome()), testutil.ToFloat64(collector.bestFitness.WithLabelValues("onemax")))
	assert.Greater(t, testutil.ToFloat64(collector.timeEvolving.WithLabelValues("onemax")), 0.0)
}

func TestCollectorCountsStops(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)

	g := newOneMax(t, 50)
	collector.Attach(g, "stopped")
	g.AddHooks(ga.Hooks{OnGenerationRan: func(g *ga.GeneticAlgorithm) {
		if g.GenerationsNumber() == 2 {
			_ = g.Stop()
		}
	}})
	require.NoError(t, g.Start(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stops.WithLabelValues("stopped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.generations.WithLabelValues("stopped")))
}

func TestNewCollectorRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}
