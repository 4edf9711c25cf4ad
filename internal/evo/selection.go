package evo

import (
	"errors"
	"fmt"
	"sort"

	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
)

var ErrSelection = errors.New("selection failed")

// Selection chooses parents from a sealed generation for reproduction.
type Selection interface {
	Name() string
	SelectChromosomes(rng randomization.Provider, number int, generation *population.Generation) ([]model.Chromosome, error)
}

func checkSelection(rng randomization.Provider, number int, generation *population.Generation) error {
	if number < 2 {
		return fmt.Errorf("%w: number of selected chromosomes must be >= 2, got %d", model.ErrOutOfRange, number)
	}
	if generation == nil {
		return fmt.Errorf("%w: generation", model.ErrNilArgument)
	}
	if rng == nil {
		return fmt.Errorf("%w: random provider", model.ErrNilArgument)
	}
	return nil
}

func byFitnessDescending(chromosomes []model.Chromosome) []model.Chromosome {
	ordered := append([]model.Chromosome(nil), chromosomes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return model.FitnessOf(ordered[i]) > model.FitnessOf(ordered[j])
	})
	return ordered
}

// EliteSelection picks the fittest chromosomes in descending order.
type EliteSelection struct{}

func (EliteSelection) Name() string {
	return "elite"
}

func (EliteSelection) SelectChromosomes(rng randomization.Provider, number int, generation *population.Generation) ([]model.Chromosome, error) {
	if err := checkSelection(rng, number, generation); err != nil {
		return nil, err
	}
	ordered := byFitnessDescending(generation.Chromosomes())
	if number > len(ordered) {
		number = len(ordered)
	}
	return ordered[:number], nil
}

// TournamentSelection runs Size-way tournaments and keeps each winner.
// Unless AllowWinnerCompete is set a winner leaves the candidate pool.
type TournamentSelection struct {
	Size               int
	AllowWinnerCompete bool
}

func (TournamentSelection) Name() string {
	return "tournament"
}

func (s TournamentSelection) SelectChromosomes(rng randomization.Provider, number int, generation *population.Generation) ([]model.Chromosome, error) {
	if err := checkSelection(rng, number, generation); err != nil {
		return nil, err
	}

	size := s.Size
	if size <= 0 {
		size = 2
	}
	candidates := generation.Chromosomes()
	if size > len(candidates) {
		return nil, fmt.Errorf("%w: tournament size %d exceeds %d available chromosomes", ErrSelection, size, len(candidates))
	}
	if !s.AllowWinnerCompete && number > len(candidates) {
		return nil, fmt.Errorf("%w: cannot pick %d distinct winners from %d chromosomes", ErrSelection, number, len(candidates))
	}

	selected := make([]model.Chromosome, 0, number)
	for len(selected) < number {
		rounds := size
		if rounds > len(candidates) {
			rounds = len(candidates)
		}
		indexes, err := rng.UniqueInts(rounds, 0, len(candidates))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSelection, err)
		}
		winner := indexes[0]
		for _, idx := range indexes[1:] {
			if model.FitnessOf(candidates[idx]) > model.FitnessOf(candidates[winner]) {
				winner = idx
			}
		}
		selected = append(selected, candidates[winner])
		if !s.AllowWinnerCompete {
			candidates = append(candidates[:winner], candidates[winner+1:]...)
		}
	}
	return selected, nil
}

// RouletteWheelSelection picks chromosomes with probability proportional to
// their fitness. A generation with zero total fitness falls back to uniform.
type RouletteWheelSelection struct{}

func (RouletteWheelSelection) Name() string {
	return "roulette-wheel"
}

func (RouletteWheelSelection) SelectChromosomes(rng randomization.Provider, number int, generation *population.Generation) ([]model.Chromosome, error) {
	if err := checkSelection(rng, number, generation); err != nil {
		return nil, err
	}

	chromosomes := generation.Chromosomes()
	wheel := make([]float64, len(chromosomes))
	total := 0.0
	for i, c := range chromosomes {
		total += model.FitnessOf(c)
		wheel[i] = total
	}

	selected := make([]model.Chromosome, 0, number)
	for len(selected) < number {
		if total <= 0 {
			selected = append(selected, chromosomes[rng.IntN(len(chromosomes))])
			continue
		}
		pointer := rng.Float64() * total
		idx := sort.SearchFloat64s(wheel, pointer)
		if idx >= len(chromosomes) {
			idx = len(chromosomes) - 1
		}
		selected = append(selected, chromosomes[idx])
	}
	return selected, nil
}
