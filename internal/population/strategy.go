package population

// GenerationStrategy decides what the population retains of past
// generations each time a new one is appended.
type GenerationStrategy interface {
	Name() string
	RegisterNewGeneration(generations []*Generation)
}

// TrackingGenerationStrategy keeps every generation intact.
type TrackingGenerationStrategy struct{}

func (TrackingGenerationStrategy) Name() string {
	return "tracking"
}

func (TrackingGenerationStrategy) RegisterNewGeneration(_ []*Generation) {}

// PerformanceGenerationStrategy keeps the chromosome lists of the last Keep
// generations and compacts older ones down to their best chromosome and
// stats. The generation records themselves stay, so the history length
// still equals the generations number.
type PerformanceGenerationStrategy struct {
	Keep int
}

func (PerformanceGenerationStrategy) Name() string {
	return "performance"
}

func (s PerformanceGenerationStrategy) RegisterNewGeneration(generations []*Generation) {
	keep := s.Keep
	if keep < 1 {
		keep = 1
	}
	for i := 0; i < len(generations)-keep; i++ {
		generations[i].compact()
	}
}
