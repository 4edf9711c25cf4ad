package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrOperatorExists   = errors.New("operator already registered")
	ErrOperatorNotFound = errors.New("operator not found")
)

const (
	FamilySelection   = "selection"
	FamilyCrossover   = "crossover"
	FamilyMutation    = "mutation"
	FamilyReinsertion = "reinsertion"
)

type registry[T any] struct {
	family string
	mu     sync.RWMutex
	m      map[string]func() T
}

func newRegistry[T any](family string) *registry[T] {
	return &registry[T]{family: family, m: make(map[string]func() T)}
}

func (r *registry[T]) register(name string, factory func() T) error {
	if name == "" {
		return errors.New("operator name is required")
	}
	if factory == nil {
		return errors.New("operator factory is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[name]; exists {
		return fmt.Errorf("%w: %s %s", ErrOperatorExists, r.family, name)
	}
	r.m[name] = factory
	return nil
}

func (r *registry[T]) resolve(name string) (T, error) {
	r.mu.RLock()
	factory, ok := r.m[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrOperatorNotFound, r.family, name)
	}
	return factory(), nil
}

func (r *registry[T]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry[T]) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = make(map[string]func() T)
}

var (
	selections   = newRegistry[Selection](FamilySelection)
	crossovers   = newRegistry[Crossover](FamilyCrossover)
	mutations    = newRegistry[Mutation](FamilyMutation)
	reinsertions = newRegistry[Reinsertion](FamilyReinsertion)
)

func init() {
	registerDefaultOperators()
}

func registerDefaultOperators() {
	_ = RegisterSelection("elite", func() Selection { return EliteSelection{} })
	_ = RegisterSelection("tournament", func() Selection { return TournamentSelection{Size: 2} })
	_ = RegisterSelection("roulette-wheel", func() Selection { return RouletteWheelSelection{} })

	_ = RegisterCrossover("one-point", func() Crossover { return NewRandomOnePointCrossover() })
	_ = RegisterCrossover("two-point", func() Crossover { return TwoPointCrossover{} })
	_ = RegisterCrossover("uniform", func() Crossover { return UniformCrossover{MixProbability: 0.5} })
	_ = RegisterCrossover("ordered", func() Crossover { return OrderedCrossover{} })

	_ = RegisterMutation("uniform", func() Mutation { return UniformMutation{} })
	_ = RegisterMutation("flip-bit", func() Mutation { return FlipBitMutation{} })
	_ = RegisterMutation("reverse-sequence", func() Mutation { return ReverseSequenceMutation{} })
	_ = RegisterMutation("twors", func() Mutation { return TworsMutation{} })

	_ = RegisterReinsertion("elitist", func() Reinsertion { return ElitistReinsertion{} })
	_ = RegisterReinsertion("pure", func() Reinsertion { return PureReinsertion{} })
	_ = RegisterReinsertion("uniform", func() Reinsertion { return UniformReinsertion{} })
}

func RegisterSelection(name string, factory func() Selection) error {
	return selections.register(name, factory)
}

func ResolveSelection(name string) (Selection, error) {
	return selections.resolve(name)
}

func RegisterCrossover(name string, factory func() Crossover) error {
	return crossovers.register(name, factory)
}

func ResolveCrossover(name string) (Crossover, error) {
	return crossovers.resolve(name)
}

func RegisterMutation(name string, factory func() Mutation) error {
	return mutations.register(name, factory)
}

func ResolveMutation(name string) (Mutation, error) {
	return mutations.resolve(name)
}

func RegisterReinsertion(name string, factory func() Reinsertion) error {
	return reinsertions.register(name, factory)
}

func ResolveReinsertion(name string) (Reinsertion, error) {
	return reinsertions.resolve(name)
}

// ListOperators returns the registered operator names keyed by family.
func ListOperators() map[string][]string {
	return map[string][]string{
		FamilySelection:   selections.names(),
		FamilyCrossover:   crossovers.names(),
		FamilyMutation:    mutations.names(),
		FamilyReinsertion: reinsertions.names(),
	}
}

func resetOperatorRegistryForTests() {
	selections.reset()
	crossovers.reset()
	mutations.reset()
	reinsertions.reset()
	registerDefaultOperators()
}
