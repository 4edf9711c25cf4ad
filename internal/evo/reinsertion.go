package evo

import (
	"fmt"

	"genetica/internal/model"
	"genetica/internal/population"
	"genetica/internal/randomization"
)

// Reinsertion merges offspring and parents into the chromosome list of the
// next generation. CanExpand reports whether fewer than MinSize offspring are
// tolerated; CanCollapse whether more than MaxSize are.
type Reinsertion interface {
	Name() string
	CanExpand() bool
	CanCollapse() bool
	SelectChromosomes(rng randomization.Provider, pop *population.Population, offspring, parents []model.Chromosome) ([]model.Chromosome, error)
}

// ReinsertionError reports offspring counts a reinsertion cannot handle.
type ReinsertionError struct {
	Reinsertion string
	Err         error
}

func (e *ReinsertionError) Error() string {
	return fmt.Sprintf("reinsertion %s: %v", e.Reinsertion, e.Err)
}

func (e *ReinsertionError) Unwrap() error {
	return e.Err
}

func checkReinsertion(r Reinsertion, pop *population.Population, offspring []model.Chromosome) error {
	if pop == nil {
		return &ReinsertionError{Reinsertion: r.Name(), Err: fmt.Errorf("%w: population", model.ErrNilArgument)}
	}
	if !r.CanExpand() && len(offspring) < pop.MinSize() {
		return &ReinsertionError{Reinsertion: r.Name(), Err: fmt.Errorf("%w: %d offspring below minimum size %d", model.ErrOutOfRange, len(offspring), pop.MinSize())}
	}
	if !r.CanCollapse() && len(offspring) > pop.MaxSize() {
		return &ReinsertionError{Reinsertion: r.Name(), Err: fmt.Errorf("%w: %d offspring above maximum size %d", model.ErrOutOfRange, len(offspring), pop.MaxSize())}
	}
	return nil
}

// ElitistReinsertion tops the offspring up to MinSize with the best parents.
// Carried parents keep their fitness and are not evaluated again.
type ElitistReinsertion struct{}

func (ElitistReinsertion) Name() string { return "elitist" }
func (ElitistReinsertion) CanExpand() bool { return true }
func (ElitistReinsertion) CanCollapse() bool { return false }

func (r ElitistReinsertion) SelectChromosomes(_ randomization.Provider, pop *population.Population, offspring, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkReinsertion(r, pop, offspring); err != nil {
		return nil, err
	}
	next := append([]model.Chromosome(nil), offspring...)
	missing := pop.MinSize() - len(next)
	if missing <= 0 {
		return next, nil
	}
	best := byFitnessDescending(parents)
	if missing > len(best) {
		missing = len(best)
	}
	return append(next, best[:missing]...), nil
}

// PureReinsertion passes the offspring through unchanged.
type PureReinsertion struct{}

func (PureReinsertion) Name() string { return "pure" }
func (PureReinsertion) CanExpand() bool { return false }
func (PureReinsertion) CanCollapse() bool { return false }

func (r PureReinsertion) SelectChromosomes(_ randomization.Provider, pop *population.Population, offspring, _ []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkReinsertion(r, pop, offspring); err != nil {
		return nil, err
	}
	return append([]model.Chromosome(nil), offspring...), nil
}

// UniformReinsertion fills up to MinSize with copies of random offspring.
type UniformReinsertion struct{}

func (UniformReinsertion) Name() string { return "uniform" }
func (UniformReinsertion) CanExpand() bool { return true }
func (UniformReinsertion) CanCollapse() bool { return false }

func (r UniformReinsertion) SelectChromosomes(rng randomization.Provider, pop *population.Population, offspring, _ []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkReinsertion(r, pop, offspring); err != nil {
		return nil, err
	}
	if len(offspring) == 0 {
		return nil, &ReinsertionError{Reinsertion: r.Name(), Err: fmt.Errorf("%w: no offspring to expand from", model.ErrOutOfRange)}
	}
	next := append([]model.Chromosome(nil), offspring...)
	for len(next) < pop.MinSize() {
		next = append(next, offspring[rng.IntN(len(offspring))].Clone())
	}
	return next, nil
}
