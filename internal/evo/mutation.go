package evo

import (
	"fmt"
	"math"
	"sort"

	"genetica/internal/model"
	"genetica/internal/randomization"
)

// Mutation perturbs a chromosome in place. Any gene it replaces clears the
// chromosome's fitness.
type Mutation interface {
	Name() string
	Mutate(rng randomization.Provider, c model.Chromosome, probability float64) error
}

// MutationError reports a violated mutation precondition.
type MutationError struct {
	Mutation string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation %s: %v", e.Mutation, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func mutationErrorf(m Mutation, format string, args ...any) error {
	return &MutationError{Mutation: m.Name(), Err: fmt.Errorf(format, args...)}
}

func checkMutation(m Mutation, c model.Chromosome, probability float64, minLength int) error {
	if c == nil {
		return mutationErrorf(m, "%w: chromosome", model.ErrNilArgument)
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return mutationErrorf(m, "%w: probability %v", model.ErrOutOfRange, probability)
	}
	if c.Length() < minLength {
		return mutationErrorf(m, "%w: length %d, minimum %d", ErrChromosomeTooShort, c.Length(), minLength)
	}
	return nil
}

// UniformMutation regenerates genes through the chromosome's own gene
// generator. With AllGenesMutable every gene rolls independently; with
// Indexes only those genes roll; otherwise one random gene is replaced when
// the single roll succeeds.
type UniformMutation struct {
	Indexes         []int
	AllGenesMutable bool
}

func (UniformMutation) Name() string {
	return "uniform"
}

func (m UniformMutation) Mutate(rng randomization.Provider, c model.Chromosome, probability float64) error {
	if err := checkMutation(m, c, probability, 1); err != nil {
		return err
	}

	switch {
	case m.AllGenesMutable:
		for i := 0; i < c.Length(); i++ {
			if rng.Float64() < probability {
				if err := c.ReplaceGene(i, c.GenerateGene(rng, i)); err != nil {
					return &MutationError{Mutation: m.Name(), Err: err}
				}
			}
		}
	case len(m.Indexes) > 0:
		for _, i := range m.Indexes {
			if i < 0 || i >= c.Length() {
				return mutationErrorf(m, "%w: gene index %d, chromosome length %d", model.ErrOutOfRange, i, c.Length())
			}
			if rng.Float64() < probability {
				if err := c.ReplaceGene(i, c.GenerateGene(rng, i)); err != nil {
					return &MutationError{Mutation: m.Name(), Err: err}
				}
			}
		}
	default:
		if rng.Float64() < probability {
			i := rng.IntN(c.Length())
			if err := c.ReplaceGene(i, c.GenerateGene(rng, i)); err != nil {
				return &MutationError{Mutation: m.Name(), Err: err}
			}
		}
	}
	return nil
}

// BitFlipper is implemented by binary chromosomes.
type BitFlipper interface {
	FlipGene(index int) error
}

// FlipBitMutation inverts one random bit of a BitFlipper chromosome.
type FlipBitMutation struct{}

func (FlipBitMutation) Name() string {
	return "flip-bit"
}

func (m FlipBitMutation) Mutate(rng randomization.Provider, c model.Chromosome, probability float64) error {
	if err := checkMutation(m, c, probability, 1); err != nil {
		return err
	}
	flipper, ok := c.(BitFlipper)
	if !ok {
		return mutationErrorf(m, "%T does not support bit flips", c)
	}
	if rng.Float64() < probability {
		if err := flipper.FlipGene(rng.IntN(c.Length())); err != nil {
			return &MutationError{Mutation: m.Name(), Err: err}
		}
	}
	return nil
}

// ReverseSequenceMutation reverses the genes between two random indexes.
type ReverseSequenceMutation struct{}

func (ReverseSequenceMutation) Name() string {
	return "reverse-sequence"
}

func (m ReverseSequenceMutation) Mutate(rng randomization.Provider, c model.Chromosome, probability float64) error {
	if err := checkMutation(m, c, probability, 3); err != nil {
		return err
	}
	if rng.Float64() >= probability {
		return nil
	}

	points, err := rng.UniqueInts(2, 0, c.Length())
	if err != nil {
		return &MutationError{Mutation: m.Name(), Err: err}
	}
	sort.Ints(points)
	genes := c.Genes()
	segment := genes[points[0] : points[1]+1]
	for i, j := 0, len(segment)-1; i < j; i, j = i+1, j-1 {
		segment[i], segment[j] = segment[j], segment[i]
	}
	if err := c.ReplaceGenes(points[0], segment); err != nil {
		return &MutationError{Mutation: m.Name(), Err: err}
	}
	return nil
}

// TworsMutation swaps two random genes.
type TworsMutation struct{}

func (TworsMutation) Name() string {
	return "twors"
}

func (m TworsMutation) Mutate(rng randomization.Provider, c model.Chromosome, probability float64) error {
	if err := checkMutation(m, c, probability, 2); err != nil {
		return err
	}
	if rng.Float64() >= probability {
		return nil
	}

	points, err := rng.UniqueInts(2, 0, c.Length())
	if err != nil {
		return &MutationError{Mutation: m.Name(), Err: err}
	}
	first, second := c.Gene(points[0]), c.Gene(points[1])
	if err := c.ReplaceGene(points[0], second); err != nil {
		return &MutationError{Mutation: m.Name(), Err: err}
	}
	if err := c.ReplaceGene(points[1], first); err != nil {
		return &MutationError{Mutation: m.Name(), Err: err}
	}
	return nil
}
