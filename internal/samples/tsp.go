package samples

import (
	"context"
	"fmt"
	"math"

	"genetica/internal/model"
	"genetica/internal/randomization"
)

type City struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TSPChromosome is a tour: a permutation of city indexes.
type TSPChromosome struct {
	model.BaseChromosome
}

func NewTSPChromosome(rng randomization.Provider, cities int) *TSPChromosome {
	c := &TSPChromosome{BaseChromosome: model.NewBaseChromosome(cities)}
	tour, _ := rng.UniqueInts(cities, 0, cities)
	for i, city := range tour {
		_ = c.ReplaceGene(i, model.NewGene(city))
	}
	return c
}

// GenerateGene picks any city, so a tour mutated gene by gene may visit a
// city twice. Order-preserving operators never call it.
func (c *TSPChromosome) GenerateGene(rng randomization.Provider, _ int) model.Gene {
	return model.NewGene(rng.IntN(c.Length()))
}

func (c *TSPChromosome) CreateNew(rng randomization.Provider) model.Chromosome {
	return NewTSPChromosome(rng, c.Length())
}

func (c *TSPChromosome) Clone() model.Chromosome {
	return &TSPChromosome{BaseChromosome: c.CloneBase()}
}

// TSPFitness scores a closed tour over Cities: shorter tours score higher.
// Valid tours score in [0.5, 1]; tours that repeat cities score below 0.5,
// scaled by their share of distinct cities.
type TSPFitness struct {
	Cities []City
	Width  float64
	Height float64
}

func NewTSPFitness(rng randomization.Provider, count int, width, height float64) TSPFitness {
	cities := make([]City, count)
	for i := range cities {
		cities[i] = City{X: rng.Float64Range(0, width), Y: rng.Float64Range(0, height)}
	}
	return TSPFitness{Cities: cities, Width: width, Height: height}
}

func (f TSPFitness) Evaluate(_ context.Context, c model.Chromosome) (float64, error) {
	if c.Length() != len(f.Cities) {
		return 0, fmt.Errorf("%w: tour length %d, cities %d", model.ErrOutOfRange, c.Length(), len(f.Cities))
	}

	tour := make([]int, c.Length())
	distinct := make(map[int]struct{}, len(tour))
	for i, g := range c.Genes() {
		city, ok := g.Value.(int)
		if !ok || city < 0 || city >= len(f.Cities) {
			return 0, fmt.Errorf("%w: gene %d holds %v", model.ErrOutOfRange, i, g.Value)
		}
		tour[i] = city
		distinct[city] = struct{}{}
	}

	distance := f.TourDistance(tour)
	diagonal := math.Hypot(f.Width, f.Height)
	quality := math.Max(0, math.Min(1, 1-distance/(float64(len(tour))*diagonal)))
	if len(distinct) == len(tour) {
		return 0.5 + 0.5*quality, nil
	}
	return 0.5 * quality * float64(len(distinct)) / float64(len(tour)), nil
}

func (TSPFitness) SupportsParallel() bool {
	return true
}

// TourDistance is the length of the closed tour visiting cities in order.
func (f TSPFitness) TourDistance(tour []int) float64 {
	total := 0.0
	for i := range tour {
		a := f.Cities[tour[i]]
		b := f.Cities[tour[(i+1)%len(tour)]]
		total += math.Hypot(a.X-b.X, a.Y-b.Y)
	}
	return total
}
