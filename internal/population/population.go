// Package population owns the generations of an evolution run.
package population

import (
	"fmt"
	"sync"
	"time"

	"genetica/internal/model"
	"genetica/internal/randomization"
)

// Population holds the ordered generations of a run, the in-progress
// generation and the best chromosome observed so far. Only the evolving
// goroutine mutates it; readers on other goroutines see consistent
// snapshots.
type Population struct {
	minSize   int
	maxSize   int
	adam      model.Chromosome
	createdAt time.Time

	// OnBestChromosomeChanged runs on the evolving goroutine whenever a
	// sealed generation raises the best fitness observed in the run.
	OnBestChromosomeChanged func(best model.Chromosome)

	mu          sync.RWMutex
	strategy    GenerationStrategy
	generations []*Generation
	current     *Generation
	best        model.Chromosome
}

// New validates the size bounds and the prototype chromosome used to seed
// the first generation.
func New(minSize, maxSize int, adam model.Chromosome) (*Population, error) {
	if minSize < 2 {
		return nil, fmt.Errorf("%w: minimum population size is 2 chromosomes, got %d", model.ErrOutOfRange, minSize)
	}
	if maxSize < minSize {
		return nil, fmt.Errorf("%w: maximum size %d must be >= minimum size %d", model.ErrOutOfRange, maxSize, minSize)
	}
	if adam == nil {
		return nil, fmt.Errorf("%w: adam chromosome", model.ErrNilArgument)
	}
	if adam.Length() < 2 {
		return nil, fmt.Errorf("%w: chromosome length must be >= 2, got %d", model.ErrOutOfRange, adam.Length())
	}
	return &Population{
		minSize:   minSize,
		maxSize:   maxSize,
		adam:      adam,
		createdAt: time.Now(),
		strategy:  TrackingGenerationStrategy{},
	}, nil
}

func (p *Population) MinSize() int {
	return p.minSize
}

func (p *Population) MaxSize() int {
	return p.maxSize
}

func (p *Population) Adam() model.Chromosome {
	return p.adam
}

func (p *Population) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Population) GenerationStrategy() GenerationStrategy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.strategy
}

func (p *Population) SetGenerationStrategy(strategy GenerationStrategy) {
	if strategy == nil {
		strategy = TrackingGenerationStrategy{}
	}
	p.mu.Lock()
	p.strategy = strategy
	p.mu.Unlock()
}

// Generations returns the generation history in chronological order.
func (p *Population) Generations() []*Generation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Generation(nil), p.generations...)
}

func (p *Population) GenerationsNumber() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.generations)
}

func (p *Population) CurrentGeneration() *Generation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// BestChromosome is the fittest chromosome of any sealed generation so far.
func (p *Population) BestChromosome() model.Chromosome {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.best
}

// CreateInitialGeneration discards any history and seeds generation 1 with
// MaxSize chromosomes created from the adam chromosome.
func (p *Population) CreateInitialGeneration(rng randomization.Provider) error {
	if rng == nil {
		return fmt.Errorf("%w: random provider", model.ErrNilArgument)
	}

	chromosomes := make([]model.Chromosome, 0, p.maxSize)
	for i := 0; i < p.maxSize; i++ {
		c := p.adam.CreateNew(rng)
		if c == nil {
			return fmt.Errorf("%w: adam chromosome %T created a nil chromosome", model.ErrNilArgument, p.adam)
		}
		chromosomes = append(chromosomes, c)
	}

	p.mu.Lock()
	p.generations = nil
	p.current = nil
	p.best = nil
	p.mu.Unlock()

	return p.CreateNewGeneration(chromosomes)
}

// CreateNewGeneration appends an unsealed generation built from chromosomes
// and makes it current.
func (p *Population) CreateNewGeneration(chromosomes []model.Chromosome) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	generation, err := NewGeneration(len(p.generations)+1, chromosomes)
	if err != nil {
		return err
	}
	p.generations = append(p.generations, generation)
	p.current = generation
	p.strategy.RegisterNewGeneration(p.generations)
	return nil
}

// EndCurrentGeneration seals the current generation and updates the best
// chromosome of the run.
func (p *Population) EndCurrentGeneration() error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == nil {
		return fmt.Errorf("%w: population has no current generation", model.ErrNilArgument)
	}

	if err := current.Seal(p.maxSize); err != nil {
		return err
	}

	candidate := current.BestChromosome()
	p.mu.Lock()
	changed := p.best == nil || model.FitnessOf(candidate) > model.FitnessOf(p.best)
	if changed {
		p.best = candidate
	}
	p.mu.Unlock()

	if changed && p.OnBestChromosomeChanged != nil {
		p.OnBestChromosomeChanged(candidate)
	}
	return nil
}
