package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genetica/internal/model"
)

func TestSelectionsValidateArguments(t *testing.T) {
	generation := sealedGeneration(t, 0.1, 0.2, 0.3)
	for _, s := range []Selection{EliteSelection{}, TournamentSelection{}, RouletteWheelSelection{}} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.SelectChromosomes(newRNG(), 1, generation)
			assert.ErrorIs(t, err, model.ErrOutOfRange)

			_, err = s.SelectChromosomes(newRNG(), 2, nil)
			assert.ErrorIs(t, err, model.ErrNilArgument)
		})
	}
}

func TestEliteSelectionPicksFittestInOrder(t *testing.T) {
	generation := sealedGeneration(t, 0.2, 0.9, 0.5, 0.7)

	selected, err := EliteSelection{}.SelectChromosomes(newRNG(), 3, generation)
	require.NoError(t, err)
	require.Len(t, selected, 3)
	assert.Equal(t, 0.9, model.FitnessOf(selected[0]))
	assert.Equal(t, 0.7, model.FitnessOf(selected[1]))
	assert.Equal(t, 0.5, model.FitnessOf(selected[2]))
}

func TestEliteSelectionClampsToGenerationSize(t *testing.T) {
	generation := sealedGeneration(t, 0.2, 0.9)
	selected, err := EliteSelection{}.SelectChromosomes(newRNG(), 5, generation)
	require.NoError(t, err)
	assert.Len(t, selected, 2)
}

func TestTournamentSelectionWithoutRepeatWinners(t *testing.T) {
	generation := sealedGeneration(t, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6)
	selection := TournamentSelection{Size: 3}

	selected, err := selection.SelectChromosomes(newRNG(), 4, generation)
	require.NoError(t, err)
	require.Len(t, selected, 4)

	seen := map[string]struct{}{}
	for _, c := range selected {
		seen[c.ID()] = struct{}{}
	}
	assert.Len(t, seen, 4, "winners leave the pool")

	_, err = TournamentSelection{Size: 7}.SelectChromosomes(newRNG(), 2, generation)
	assert.ErrorIs(t, err, ErrSelection)

	_, err = selection.SelectChromosomes(newRNG(), 7, generation)
	assert.ErrorIs(t, err, ErrSelection)
}

func TestTournamentSelectionFullSizeAlwaysPicksBest(t *testing.T) {
	generation := sealedGeneration(t, 0.1, 0.8, 0.3)
	selected, err := TournamentSelection{Size: 3, AllowWinnerCompete: true}.SelectChromosomes(newRNG(), 5, generation)
	require.NoError(t, err)
	require.Len(t, selected, 5)
	for _, c := range selected {
		assert.Equal(t, 0.8, model.FitnessOf(c))
	}
}

func TestRouletteWheelSelectionFollowsFitnessMass(t *testing.T) {
	generation := sealedGeneration(t, 1, 0, 0, 0)
	selected, err := RouletteWheelSelection{}.SelectChromosomes(newRNG(), 10, generation)
	require.NoError(t, err)
	require.Len(t, selected, 10)
	for _, c := range selected {
		assert.Equal(t, 1.0, model.FitnessOf(c))
	}
}

func TestRouletteWheelSelectionZeroFitnessFallsBackToUniform(t *testing.T) {
	generation := sealedGeneration(t, 0, 0, 0)
	selected, err := RouletteWheelSelection{}.SelectChromosomes(newRNG(), 6, generation)
	require.NoError(t, err)
	assert.Len(t, selected, 6)
}
