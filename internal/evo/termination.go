package evo

import (
	"fmt"
	"strings"
	"time"

	"genetica/internal/model"
)

// Termination decides when evolution stops. It is checked once after every
// generation is evaluated, and again by Resume before evolving further.
type Termination interface {
	HasReached(state EvolutionState) bool
	String() string
}

// GenerationNumberTermination is reached once N generations exist. N <= 0
// behaves as 1.
type GenerationNumberTermination struct {
	N int
}

func (t GenerationNumberTermination) expected() int {
	if t.N <= 0 {
		return 1
	}
	return t.N
}

func (t GenerationNumberTermination) HasReached(state EvolutionState) bool {
	return state.GenerationsNumber() >= t.expected()
}

func (t GenerationNumberTermination) String() string {
	return fmt.Sprintf("generation number >= %d", t.expected())
}

// FitnessThresholdTermination is reached when the best chromosome scores at
// least Threshold.
type FitnessThresholdTermination struct {
	Threshold float64
}

func (t FitnessThresholdTermination) HasReached(state EvolutionState) bool {
	best := state.BestChromosome()
	return model.HasFitness(best) && model.FitnessOf(best) >= t.Threshold
}

func (t FitnessThresholdTermination) String() string {
	return fmt.Sprintf("best fitness >= %g", t.Threshold)
}

// FitnessStagnationTermination is reached when the best fitness has not
// changed for Generations consecutive generations. Repeated checks within
// one generation do not advance the count.
type FitnessStagnationTermination struct {
	Generations int

	lastGeneration int
	lastFitness    float64
	stagnant       int
}

func NewFitnessStagnationTermination(generations int) *FitnessStagnationTermination {
	return &FitnessStagnationTermination{Generations: generations}
}

func (t *FitnessStagnationTermination) HasReached(state EvolutionState) bool {
	generation := state.GenerationsNumber()
	if generation != t.lastGeneration {
		fitness := model.FitnessOf(state.BestChromosome())
		if t.lastGeneration > 0 && fitness == t.lastFitness {
			t.stagnant++
		} else {
			t.stagnant = 1
		}
		t.lastFitness = fitness
		t.lastGeneration = generation
	}
	return t.stagnant >= t.expected()
}

func (t *FitnessStagnationTermination) expected() int {
	if t.Generations <= 0 {
		return 1
	}
	return t.Generations
}

func (t *FitnessStagnationTermination) String() string {
	return fmt.Sprintf("best fitness unchanged for %d generations", t.expected())
}

// TimeEvolvingTermination is reached once the run has evolved for MaxTime.
type TimeEvolvingTermination struct {
	MaxTime time.Duration
}

func (t TimeEvolvingTermination) HasReached(state EvolutionState) bool {
	return state.TimeEvolving() >= t.MaxTime
}

func (t TimeEvolvingTermination) String() string {
	return fmt.Sprintf("time evolving >= %s", t.MaxTime)
}

// AndTermination is reached when every child termination is reached. All
// children are checked on every call so stateful ones stay current.
type AndTermination struct {
	Terminations []Termination
}

func NewAndTermination(terminations ...Termination) AndTermination {
	return AndTermination{Terminations: terminations}
}

func (t AndTermination) HasReached(state EvolutionState) bool {
	if len(t.Terminations) == 0 {
		return false
	}
	reached := true
	for _, child := range t.Terminations {
		if !child.HasReached(state) {
			reached = false
		}
	}
	return reached
}

func (t AndTermination) String() string {
	return joinTerminations(t.Terminations, " and ")
}

// OrTermination is reached when any child termination is reached.
type OrTermination struct {
	Terminations []Termination
}

func NewOrTermination(terminations ...Termination) OrTermination {
	return OrTermination{Terminations: terminations}
}

func (t OrTermination) HasReached(state EvolutionState) bool {
	reached := false
	for _, child := range t.Terminations {
		if child.HasReached(state) {
			reached = true
		}
	}
	return reached
}

func (t OrTermination) String() string {
	return joinTerminations(t.Terminations, " or ")
}

func joinTerminations(terminations []Termination, sep string) string {
	parts := make([]string, len(terminations))
	for i, child := range terminations {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
