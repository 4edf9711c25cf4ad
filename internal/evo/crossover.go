package evo

import (
	"errors"
	"fmt"
	"sort"

	"genetica/internal/model"
	"genetica/internal/randomization"
)

var (
	ErrChromosomeTooShort  = errors.New("chromosome too short")
	ErrUnorderedChromosome = errors.New("chromosome genes are not an ordered set")
)

// Crossover combines ParentsNumber parents into ChildrenNumber children.
type Crossover interface {
	Name() string
	ParentsNumber() int
	ChildrenNumber() int
	MinChromosomeLength() int
	Cross(rng randomization.Provider, parents []model.Chromosome) ([]model.Chromosome, error)
}

// CrossoverError reports a violated crossover precondition.
type CrossoverError struct {
	Crossover string
	Err       error
}

func (e *CrossoverError) Error() string {
	return fmt.Sprintf("crossover %s: %v", e.Crossover, e.Err)
}

func (e *CrossoverError) Unwrap() error {
	return e.Err
}

func crossoverErrorf(c Crossover, format string, args ...any) error {
	return &CrossoverError{Crossover: c.Name(), Err: fmt.Errorf(format, args...)}
}

func checkParents(c Crossover, parents []model.Chromosome) error {
	if len(parents) != c.ParentsNumber() {
		return crossoverErrorf(c, "%w: expected %d parents, got %d", model.ErrOutOfRange, c.ParentsNumber(), len(parents))
	}
	for i, p := range parents {
		if p == nil {
			return crossoverErrorf(c, "%w: parent %d", model.ErrNilArgument, i)
		}
	}
	length := parents[0].Length()
	for _, p := range parents[1:] {
		if p.Length() != length {
			return crossoverErrorf(c, "%w: parents differ in length (%d vs %d)", model.ErrOutOfRange, length, p.Length())
		}
	}
	if length < c.MinChromosomeLength() {
		return crossoverErrorf(c, "%w: length %d, minimum %d", ErrChromosomeTooShort, length, c.MinChromosomeLength())
	}
	return nil
}

// newChild builds a fresh chromosome of the parents' kind carrying genes.
func newChild(rng randomization.Provider, template model.Chromosome, genes []model.Gene) (model.Chromosome, error) {
	child := template.CreateNew(rng)
	if err := child.ReplaceGenes(0, genes); err != nil {
		return nil, err
	}
	child.ClearFitness()
	return child, nil
}

func newChildren(c Crossover, rng randomization.Provider, template model.Chromosome, genes ...[]model.Gene) ([]model.Chromosome, error) {
	children := make([]model.Chromosome, 0, len(genes))
	for _, g := range genes {
		child, err := newChild(rng, template, g)
		if err != nil {
			return nil, &CrossoverError{Crossover: c.Name(), Err: err}
		}
		children = append(children, child)
	}
	return children, nil
}

// OnePointCrossover swaps the gene tails of two parents after SwapIndex.
// A negative SwapIndex picks a random point on every cross.
type OnePointCrossover struct {
	SwapIndex int
}

func NewRandomOnePointCrossover() OnePointCrossover {
	return OnePointCrossover{SwapIndex: -1}
}

func (OnePointCrossover) Name() string { return "one-point" }
func (OnePointCrossover) ParentsNumber() int { return 2 }
func (OnePointCrossover) ChildrenNumber() int { return 2 }
func (OnePointCrossover) MinChromosomeLength() int { return 2 }

func (c OnePointCrossover) Cross(rng randomization.Provider, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkParents(c, parents); err != nil {
		return nil, err
	}
	length := parents[0].Length()
	swap := c.SwapIndex
	if swap < 0 {
		swap = rng.IntN(length - 1)
	}
	if swap >= length-1 {
		return nil, crossoverErrorf(c, "%w: swap index %d must be below %d", model.ErrOutOfRange, swap, length-1)
	}

	first, second := parents[0].Genes(), parents[1].Genes()
	a := append(append([]model.Gene(nil), first[:swap+1]...), second[swap+1:]...)
	b := append(append([]model.Gene(nil), second[:swap+1]...), first[swap+1:]...)
	return newChildren(c, rng, parents[0], a, b)
}

// TwoPointCrossover swaps the genes between First and Second (exclusive of
// First, inclusive of Second). Second <= 0 picks both points at random.
type TwoPointCrossover struct {
	First  int
	Second int
}

func (TwoPointCrossover) Name() string { return "two-point" }
func (TwoPointCrossover) ParentsNumber() int { return 2 }
func (TwoPointCrossover) ChildrenNumber() int { return 2 }
func (TwoPointCrossover) MinChromosomeLength() int { return 3 }

func (c TwoPointCrossover) Cross(rng randomization.Provider, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkParents(c, parents); err != nil {
		return nil, err
	}
	length := parents[0].Length()
	first, second := c.First, c.Second
	if second <= 0 {
		points, err := rng.UniqueInts(2, 0, length-1)
		if err != nil {
			return nil, &CrossoverError{Crossover: c.Name(), Err: err}
		}
		sort.Ints(points)
		first, second = points[0], points[1]
	}
	if first < 0 || first >= second || second >= length-1 {
		return nil, crossoverErrorf(c, "%w: points %d and %d for length %d", model.ErrOutOfRange, first, second, length)
	}

	p1, p2 := parents[0].Genes(), parents[1].Genes()
	a := make([]model.Gene, length)
	b := make([]model.Gene, length)
	for i := 0; i < length; i++ {
		if i > first && i <= second {
			a[i], b[i] = p2[i], p1[i]
			continue
		}
		a[i], b[i] = p1[i], p2[i]
	}
	return newChildren(c, rng, parents[0], a, b)
}

// UniformCrossover swaps each gene independently with MixProbability
// (0.5 when unset).
type UniformCrossover struct {
	MixProbability float64
}

func (UniformCrossover) Name() string { return "uniform" }
func (UniformCrossover) ParentsNumber() int { return 2 }
func (UniformCrossover) ChildrenNumber() int { return 2 }
func (UniformCrossover) MinChromosomeLength() int { return 1 }

func (c UniformCrossover) Cross(rng randomization.Provider, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkParents(c, parents); err != nil {
		return nil, err
	}
	mix := c.MixProbability
	if mix <= 0 {
		mix = 0.5
	}
	if mix > 1 {
		return nil, crossoverErrorf(c, "%w: mix probability %v", model.ErrOutOfRange, mix)
	}

	p1, p2 := parents[0].Genes(), parents[1].Genes()
	a := make([]model.Gene, len(p1))
	b := make([]model.Gene, len(p1))
	for i := range p1 {
		if rng.Float64() < mix {
			a[i], b[i] = p2[i], p1[i]
			continue
		}
		a[i], b[i] = p1[i], p2[i]
	}
	return newChildren(c, rng, parents[0], a, b)
}

// OrderedCrossover is OX1 for permutation chromosomes: each child keeps a
// random segment of one parent and takes the remaining genes in the order
// they appear in the other. Both parents must hold the same set of unique
// genes.
type OrderedCrossover struct{}

func (OrderedCrossover) Name() string { return "ordered" }
func (OrderedCrossover) ParentsNumber() int { return 2 }
func (OrderedCrossover) ChildrenNumber() int { return 2 }
func (OrderedCrossover) MinChromosomeLength() int { return 2 }

func (c OrderedCrossover) Cross(rng randomization.Provider, parents []model.Chromosome) ([]model.Chromosome, error) {
	if err := checkParents(c, parents); err != nil {
		return nil, err
	}
	p1, p2 := parents[0].Genes(), parents[1].Genes()
	if err := checkOrdered(p1, p2); err != nil {
		return nil, &CrossoverError{Crossover: c.Name(), Err: err}
	}

	points, err := rng.UniqueInts(2, 0, len(p1))
	if err != nil {
		return nil, &CrossoverError{Crossover: c.Name(), Err: err}
	}
	sort.Ints(points)
	start, end := points[0], points[1]

	a := orderedChild(p1, p2, start, end)
	b := orderedChild(p2, p1, start, end)
	return newChildren(c, rng, parents[0], a, b)
}

func checkOrdered(p1, p2 []model.Gene) error {
	seen := make(map[string]struct{}, len(p1))
	for _, g := range p1 {
		key := g.String()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: gene %s repeats", ErrUnorderedChromosome, key)
		}
		seen[key] = struct{}{}
	}
	other := make(map[string]struct{}, len(p2))
	for _, g := range p2 {
		key := g.String()
		if _, ok := seen[key]; !ok {
			return fmt.Errorf("%w: gene %s missing from first parent", ErrUnorderedChromosome, key)
		}
		if _, dup := other[key]; dup {
			return fmt.Errorf("%w: gene %s repeats", ErrUnorderedChromosome, key)
		}
		other[key] = struct{}{}
	}
	return nil
}

func orderedChild(segmentParent, orderParent []model.Gene, start, end int) []model.Gene {
	child := make([]model.Gene, len(segmentParent))
	kept := make(map[string]struct{}, end-start+1)
	for i := start; i <= end; i++ {
		child[i] = segmentParent[i]
		kept[segmentParent[i].String()] = struct{}{}
	}

	pos := 0
	for _, g := range orderParent {
		if _, ok := kept[g.String()]; ok {
			continue
		}
		if pos == start {
			pos = end + 1
		}
		child[pos] = g
		pos++
	}
	return child
}
