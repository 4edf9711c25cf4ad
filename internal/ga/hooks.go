package ga

// Hooks receive lifecycle notifications. They run synchronously on the
// evolving goroutine; a hook may call Stop.
type Hooks struct {
	// OnGenerationRan fires after every generation is evaluated and sealed.
	OnGenerationRan func(g *GeneticAlgorithm)
	// OnTerminationReached fires once when the termination is reached.
	OnTerminationReached func(g *GeneticAlgorithm)
	// OnStopped fires whenever a run ends in StateStopped, whether by Stop,
	// a timeout or an error.
	OnStopped func(g *GeneticAlgorithm)
}

// AddHooks registers h. Hooks fire in registration order.
func (g *GeneticAlgorithm) AddHooks(h Hooks) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, h)
}

func (g *GeneticAlgorithm) snapshotHooks() []Hooks {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Hooks(nil), g.hooks...)
}

func (g *GeneticAlgorithm) fireGenerationRan() {
	for _, h := range g.snapshotHooks() {
		if h.OnGenerationRan != nil {
			h.OnGenerationRan(g)
		}
	}
}

func (g *GeneticAlgorithm) fireTerminationReached() {
	for _, h := range g.snapshotHooks() {
		if h.OnTerminationReached != nil {
			h.OnTerminationReached(g)
		}
	}
}

func (g *GeneticAlgorithm) fireStopped() {
	for _, h := range g.snapshotHooks() {
		if h.OnStopped != nil {
			h.OnStopped(g)
		}
	}
}
