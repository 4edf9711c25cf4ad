// Package metrics exports genetic algorithm progress as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"genetica/internal/ga"
	"genetica/internal/model"
)

// Collector holds the run-labelled metric vectors. One collector serves any
// number of algorithms, each attached under its own run label.
type Collector struct {
	generations  *prometheus.CounterVec
	bestFitness  *prometheus.GaugeVec
	timeEvolving *prometheus.GaugeVec
	terminations *prometheus.CounterVec
	stops        *prometheus.CounterVec
}

// NewCollector registers the metric vectors with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genetica_generations_total",
			Help: "Generations evaluated and sealed.",
		}, []string{"run"}),
		bestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "genetica_best_fitness",
			Help: "Best fitness observed in the run so far.",
		}, []string{"run"}),
		timeEvolving: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "genetica_time_evolving_seconds",
			Help: "Wall-clock time the run spent evolving.",
		}, []string{"run"}),
		terminations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genetica_terminations_total",
			Help: "Runs that reached their termination.",
		}, []string{"run"}),
		stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genetica_stops_total",
			Help: "Runs that ended stopped, by request, timeout or error.",
		}, []string{"run"}),
	}

	for _, collector := range []prometheus.Collector{c.generations, c.bestFitness, c.timeEvolving, c.terminations, c.stops} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// Attach records the lifecycle of g under the run label.
func (c *Collector) Attach(g *ga.GeneticAlgorithm, run string) {
	g.AddHooks(ga.Hooks{
		OnGenerationRan: func(g *ga.GeneticAlgorithm) {
			c.generations.WithLabelValues(run).Inc()
			c.bestFitness.WithLabelValues(run).Set(model.FitnessOf(g.BestChromosome()))
			c.timeEvolving.WithLabelValues(run).Set(g.TimeEvolving().Seconds())
		},
		OnTerminationReached: func(*ga.GeneticAlgorithm) {
			c.terminations.WithLabelValues(run).Inc()
		},
		OnStopped: func(g *ga.GeneticAlgorithm) {
			c.stops.WithLabelValues(run).Inc()
			c.timeEvolving.WithLabelValues(run).Set(g.TimeEvolving().Seconds())
		},
	})
}
