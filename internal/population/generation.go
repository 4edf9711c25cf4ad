package population

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"genetica/internal/model"
)

var (
	ErrGenerationSealed = errors.New("generation already sealed")
	ErrUnevaluated      = errors.New("chromosome has no fitness")
)

// Stats summarizes the fitness distribution of a sealed generation.
type Stats struct {
	Size   int     `json:"size"`
	Best   float64 `json:"best"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Worst  float64 `json:"worst"`
}

// Generation is one population snapshot. It is mutable until Seal, after
// which its chromosome order, best chromosome and stats are frozen.
type Generation struct {
	mu          sync.RWMutex
	number      int
	createdAt   time.Time
	chromosomes []model.Chromosome
	best        model.Chromosome
	stats       Stats
	sealed      bool
	compacted   bool
}

func NewGeneration(number int, chromosomes []model.Chromosome) (*Generation, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: generation number %d must be >= 1", model.ErrOutOfRange, number)
	}
	if len(chromosomes) < 2 {
		return nil, fmt.Errorf("%w: a generation needs at least 2 chromosomes, got %d", model.ErrOutOfRange, len(chromosomes))
	}
	for i, c := range chromosomes {
		if c == nil {
			return nil, fmt.Errorf("%w: chromosome at index %d", model.ErrNilArgument, i)
		}
	}
	return &Generation{
		number:      number,
		createdAt:   time.Now(),
		chromosomes: append([]model.Chromosome(nil), chromosomes...),
	}, nil
}

func (g *Generation) Number() int {
	return g.number
}

func (g *Generation) CreatedAt() time.Time {
	return g.createdAt
}

// Chromosomes returns the generation's chromosomes. Once sealed they are
// ordered by descending fitness.
func (g *Generation) Chromosomes() []model.Chromosome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]model.Chromosome(nil), g.chromosomes...)
}

func (g *Generation) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.chromosomes)
}

// BestChromosome is nil until the generation is sealed.
func (g *Generation) BestChromosome() model.Chromosome {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.best
}

func (g *Generation) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats
}

func (g *Generation) Sealed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sealed
}

// Compacted reports whether the chromosome list was released by a
// generation strategy. Number, best chromosome and stats survive.
func (g *Generation) Compacted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.compacted
}

// Seal sorts the chromosomes by descending fitness (stable), keeps at most
// maxSize of them and freezes the best chromosome and stats. Every
// chromosome must already carry a fitness.
func (g *Generation) Seal(maxSize int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sealed {
		return fmt.Errorf("%w: generation %d", ErrGenerationSealed, g.number)
	}
	for _, c := range g.chromosomes {
		if !model.HasFitness(c) {
			return fmt.Errorf("%w: chromosome %s in generation %d", ErrUnevaluated, c.ID(), g.number)
		}
	}

	sort.SliceStable(g.chromosomes, func(i, j int) bool {
		return model.FitnessOf(g.chromosomes[i]) > model.FitnessOf(g.chromosomes[j])
	})
	if maxSize > 0 && len(g.chromosomes) > maxSize {
		g.chromosomes = g.chromosomes[:maxSize]
	}

	fitnesses := make([]float64, len(g.chromosomes))
	for i, c := range g.chromosomes {
		fitnesses[i] = model.FitnessOf(c)
	}
	mean, std := stat.MeanStdDev(fitnesses, nil)
	if len(fitnesses) < 2 {
		std = 0
	}

	g.best = g.chromosomes[0]
	g.stats = Stats{
		Size:   len(fitnesses),
		Best:   fitnesses[0],
		Mean:   mean,
		StdDev: std,
		Worst:  fitnesses[len(fitnesses)-1],
	}
	g.sealed = true
	return nil
}

func (g *Generation) compact() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.sealed || g.compacted {
		return
	}
	g.chromosomes = []model.Chromosome{g.best}
	g.compacted = true
}
