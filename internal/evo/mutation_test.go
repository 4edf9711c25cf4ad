package evo

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetica/internal/model"
	"genetica/internal/samples"
)

func TestMutationsRejectInvalidProbability(t *testing.T) {
	for _, m := range []Mutation{UniformMutation{}, FlipBitMutation{}, ReverseSequenceMutation{}, TworsMutation{}} {
		t.Run(m.Name(), func(t *testing.T) {
			err := m.Mutate(newRNG(), sequence(t, 0, 1, 2, 3), 1.5)
			var mutErr *MutationError
			require.True(t, errors.As(err, &mutErr))
			assert.Equal(t, m.Name(), mutErr.Mutation)
			assert.ErrorIs(t, err, model.ErrOutOfRange)

			assert.ErrorIs(t, m.Mutate(newRNG(), nil, 0.5), model.ErrNilArgument)
		})
	}
}

func TestUniformMutationZeroProbabilityKeepsFitness(t *testing.T) {
	c := sequence(t, 0, 1, 2, 3)
	c.SetFitness(0.4)

	require.NoError(t, UniformMutation{AllGenesMutable: true}.Mutate(newRNG(), c, 0))
	assert.Equal(t, []int{0, 1, 2, 3}, ints(c))
	assert.True(t, model.HasFitness(c))
}

func TestUniformMutationClearsFitness(t *testing.T) {
	c := samples.NewBinaryChromosome(newRNG(), 16)
	c.SetFitness(0.4)

	require.NoError(t, UniformMutation{AllGenesMutable: true}.Mutate(newRNG(), c, 1))
	assert.False(t, model.HasFitness(c))
}

func TestUniformMutationIndexesAreValidated(t *testing.T) {
	c := sequence(t, 0, 1, 2)
	err := UniformMutation{Indexes: []int{5}}.Mutate(newRNG(), c, 1)
	assert.ErrorIs(t, err, model.ErrOutOfRange)

	before := ints(c)
	require.NoError(t, UniformMutation{Indexes: []int{1}}.Mutate(newRNG(), c, 1))
	after := ints(c)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
}

func TestFlipBitMutationFlipsOneBit(t *testing.T) {
	c := samples.NewBinaryChromosome(newRNG(), 10)
	before := ints(c)

	require.NoError(t, FlipBitMutation{}.Mutate(newRNG(), c, 1))
	after := ints(c)
	changed := 0
	for i := range before {
		if before[i] != after[i] {
			changed++
		}
	}
	assert.Equal(t, 1, changed)

	err := FlipBitMutation{}.Mutate(newRNG(), sequence(t, 0, 1, 2), 1)
	var mutErr *MutationError
	assert.True(t, errors.As(err, &mutErr))
}

func TestReverseSequenceMutationKeepsGenes(t *testing.T) {
	c := sequence(t, 0, 1, 2, 3, 4, 5, 6, 7)
	require.NoError(t, ReverseSequenceMutation{}.Mutate(newRNG(), c, 1))

	got := ints(c)
	assert.NotEqual(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, got)
	sort.Ints(got)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, got)

	err := ReverseSequenceMutation{}.Mutate(newRNG(), sequence(t, 0, 1), 1)
	assert.ErrorIs(t, err, ErrChromosomeTooShort)
}

func TestTworsMutationSwapsTwoGenes(t *testing.T) {
	c := sequence(t, 0, 1, 2, 3, 4, 5)
	require.NoError(t, TworsMutation{}.Mutate(newRNG(), c, 1))

	got := ints(c)
	moved := 0
	for i, v := range got {
		if v != i {
			moved++
		}
	}
	assert.Equal(t, 2, moved)

	err := TworsMutation{}.Mutate(newRNG(), sequence(t, 0), 1)
	assert.ErrorIs(t, err, ErrChromosomeTooShort)
}
