package genetica

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"genetica/internal/evo"
	"genetica/internal/executor"
	"genetica/internal/ga"
	"genetica/internal/metrics"
	"genetica/internal/model"
	"genetica/internal/platform"
	"genetica/internal/population"
	"genetica/internal/randomization"
	"genetica/internal/samples"
	"genetica/internal/storage"
)

const (
	defaultDBPath  = "genetica.db"
	defaultProblem = "onemax"

	tspWidth  = 1000
	tspHeight = 1000
)

// Streams derived from a request's base seed. The problem instance and the
// operators draw from separate streams, so every Compare variant faces the
// same problem and starts from the same operator sequence.
const (
	problemStream uint64 = iota
	operatorStream
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger

	// MaxConcurrent bounds how many runs Compare evolves at once.
	MaxConcurrent int

	// Registerer receives the run metrics when set.
	Registerer prometheus.Registerer
}

type Client struct {
	store     storage.Store
	bench     *platform.Bench
	logger    *slog.Logger
	collector *metrics.Collector

	maxConcurrent int
}

// RunRequest describes one run of a sample problem. Zero values take the
// defaults documented on each field.
type RunRequest struct {
	Name string `json:"name,omitempty"`

	// Problem is onemax (default) or tsp.
	Problem string `json:"problem,omitempty"`

	// Genes is the number of bits for onemax (default 32) or cities for tsp
	// (default 20).
	Genes   int   `json:"genes,omitempty"`
	MinSize int   `json:"min_size,omitempty"`
	MaxSize int   `json:"max_size,omitempty"`
	Seed    int64 `json:"seed,omitempty"`

	// Generations caps the run (default 100). The optional goals below end
	// it earlier when any of them is met.
	Generations           int     `json:"generations,omitempty"`
	FitnessThreshold      float64 `json:"fitness_threshold,omitempty"`
	StagnationGenerations int     `json:"stagnation_generations,omitempty"`
	TimeLimit             string  `json:"time_limit,omitempty"`

	Selection   string `json:"selection,omitempty"`
	Crossover   string `json:"crossover,omitempty"`
	Mutation    string `json:"mutation,omitempty"`
	Reinsertion string `json:"reinsertion,omitempty"`

	CrossoverProbability float64 `json:"crossover_probability,omitempty"`
	MutationProbability  float64 `json:"mutation_probability,omitempty"`

	// Executor is linear (default), parallel or task-group.
	Executor string `json:"executor,omitempty"`
	Workers  int    `json:"workers,omitempty"`

	// Strategy is default or parallel.
	Strategy string `json:"strategy,omitempty"`

	// GenerationStrategy is tracking (default) or performance.
	GenerationStrategy string `json:"generation_strategy,omitempty"`
	CacheFitness       bool   `json:"cache_fitness,omitempty"`
	EvaluationTimeout  string `json:"evaluation_timeout,omitempty"`
}

type RunSummary struct {
	RunID            string
	Name             string
	State            string
	Generations      int
	BestFitness      float64
	BestGenes        []string
	BestByGeneration []float64
	TimeEvolving     time.Duration
	Operators        map[string]string
}

type RunsRequest struct {
	Limit int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	client := &Client{
		store:         store,
		logger:        logger,
		maxConcurrent: opts.MaxConcurrent,
	}
	if opts.Registerer != nil {
		collector, err := metrics.NewCollector(opts.Registerer)
		if err != nil {
			_ = storage.CloseIfSupported(store)
			return nil, err
		}
		client.collector = collector
	}
	return client, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureBench(ctx)
	return err
}

// Run evolves the requested problem to termination and saves its report.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	req, timeout, err := normalizeRequest(req)
	if err != nil {
		return RunSummary{}, err
	}
	bench, err := c.ensureBench(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	base := baseRandom(req)
	p, err := newProblem(req, base.Derive(problemStream))
	if err != nil {
		return RunSummary{}, err
	}
	g, err := c.buildAlgorithm(req, p, base.Derive(operatorStream))
	if err != nil {
		return RunSummary{}, err
	}

	outcome, err := bench.RunWithTimeout(ctx, g, timeout)
	if outcome.Record.ID == "" {
		return RunSummary{}, err
	}
	return summarize(outcome.Record), err
}

// Compare evolves the same request once per executor, concurrently, and
// returns the summaries ordered by best fitness, highest first.
func (c *Client) Compare(ctx context.Context, req RunRequest, executors ...string) ([]RunSummary, error) {
	if len(executors) == 0 {
		executors = []string{"linear", "parallel", "task-group"}
	}
	req, timeout, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	bench, err := c.ensureBench(ctx)
	if err != nil {
		return nil, err
	}

	algorithms, err := c.compareAlgorithms(req, executors)
	if err != nil {
		return nil, err
	}

	outcomes, err := bench.CompareWithTimeout(ctx, timeout, algorithms...)
	summaries := make([]RunSummary, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Record.ID == "" {
			continue
		}
		summaries = append(summaries, summarize(outcome.Record))
	}
	return summaries, err
}

// compareAlgorithms builds one algorithm per executor over a single problem
// instance. An unseeded request is pinned to one time seed first.
func (c *Client) compareAlgorithms(req RunRequest, executors []string) ([]*ga.GeneticAlgorithm, error) {
	base := baseRandom(req)
	p, err := newProblem(req, base.Derive(problemStream))
	if err != nil {
		return nil, err
	}

	algorithms := make([]*ga.GeneticAlgorithm, 0, len(executors))
	for _, name := range executors {
		variant := req
		variant.Executor = name
		variant.Name = req.Name + "/" + name
		g, err := c.buildAlgorithm(variant, p, base.Derive(operatorStream))
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, g)
	}
	return algorithms, nil
}

// Runs lists stored run reports, newest first. The limit defaults to 20.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	bench, err := c.ensureBench(ctx)
	if err != nil {
		return nil, err
	}
	return bench.Runs(ctx, req.Limit)
}

func (c *Client) ensureBench(ctx context.Context) (*platform.Bench, error) {
	if c.bench != nil {
		return c.bench, nil
	}
	b := platform.NewBench(platform.Config{
		Store:         c.store,
		MaxConcurrent: c.maxConcurrent,
		Logger:        c.logger,
	})
	if err := b.Init(ctx); err != nil {
		return nil, err
	}
	c.bench = b
	return c.bench, nil
}

func normalizeRequest(req RunRequest) (RunRequest, time.Duration, error) {
	if req.Problem == "" {
		req.Problem = defaultProblem
	}
	if req.Name == "" {
		req.Name = req.Problem
	}
	if req.Genes <= 0 {
		switch req.Problem {
		case "tsp":
			req.Genes = 20
		default:
			req.Genes = 32
		}
	}
	if req.MinSize <= 0 {
		req.MinSize = 50
	}
	if req.MaxSize <= 0 {
		req.MaxSize = req.MinSize
	}
	if req.MaxSize < req.MinSize {
		return RunRequest{}, 0, fmt.Errorf("max size %d must be >= min size %d", req.MaxSize, req.MinSize)
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Selection == "" {
		req.Selection = "elite"
	}
	if req.Reinsertion == "" {
		req.Reinsertion = "elitist"
	}
	if req.Crossover == "" || req.Mutation == "" {
		crossover, mutation := "one-point", "flip-bit"
		if req.Problem == "tsp" {
			crossover, mutation = "ordered", "reverse-sequence"
		}
		if req.Crossover == "" {
			req.Crossover = crossover
		}
		if req.Mutation == "" {
			req.Mutation = mutation
		}
	}
	if req.CrossoverProbability == 0 {
		req.CrossoverProbability = ga.DefaultCrossoverProbability
	}
	if req.MutationProbability == 0 {
		req.MutationProbability = ga.DefaultMutationProbability
	}
	if req.Executor == "" {
		req.Executor = "linear"
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}

	var timeout time.Duration
	if req.EvaluationTimeout != "" {
		d, err := time.ParseDuration(req.EvaluationTimeout)
		if err != nil {
			return RunRequest{}, 0, fmt.Errorf("evaluation timeout: %w", err)
		}
		timeout = d
	}
	if req.TimeLimit != "" {
		if _, err := time.ParseDuration(req.TimeLimit); err != nil {
			return RunRequest{}, 0, fmt.Errorf("time limit: %w", err)
		}
	}
	return req, timeout, nil
}

func baseRandom(req RunRequest) *randomization.Basic {
	if req.Seed != 0 {
		return randomization.NewBasic(req.Seed)
	}
	return randomization.NewTimeSeeded()
}

// problem is the fitness landscape a run evolves against. Fitness is
// read-only and shared by every algorithm built from it.
type problem struct {
	fitness evo.Fitness
	adam    func(rng randomization.Provider) model.Chromosome
}

func newProblem(req RunRequest, rng randomization.Provider) (problem, error) {
	switch req.Problem {
	case "onemax":
		return problem{
			fitness: samples.OneMaxFitness{},
			adam: func(rng randomization.Provider) model.Chromosome {
				return samples.NewBinaryChromosome(rng, req.Genes)
			},
		}, nil
	case "tsp":
		return problem{
			fitness: samples.NewTSPFitness(rng, req.Genes, tspWidth, tspHeight),
			adam: func(rng randomization.Provider) model.Chromosome {
				return samples.NewTSPChromosome(rng, req.Genes)
			},
		}, nil
	default:
		return problem{}, fmt.Errorf("unknown problem: %s", req.Problem)
	}
}

func (c *Client) buildAlgorithm(req RunRequest, p problem, rng randomization.Provider) (*ga.GeneticAlgorithm, error) {
	fitness := p.fitness
	if req.CacheFitness {
		fitness = evo.NewCachedFitness(fitness, 0)
	}

	pop, err := population.New(req.MinSize, req.MaxSize, p.adam(rng))
	if err != nil {
		return nil, err
	}
	switch req.GenerationStrategy {
	case "", "tracking":
	case "performance":
		pop.SetGenerationStrategy(population.PerformanceGenerationStrategy{Keep: 10})
	default:
		return nil, fmt.Errorf("unknown generation strategy: %s", req.GenerationStrategy)
	}

	selection, err := evo.ResolveSelection(req.Selection)
	if err != nil {
		return nil, err
	}
	crossover, err := evo.ResolveCrossover(req.Crossover)
	if err != nil {
		return nil, err
	}
	mutation, err := evo.ResolveMutation(req.Mutation)
	if err != nil {
		return nil, err
	}
	reinsertion, err := evo.ResolveReinsertion(req.Reinsertion)
	if err != nil {
		return nil, err
	}

	g, err := ga.New(pop, fitness, selection, crossover, mutation)
	if err != nil {
		return nil, err
	}
	g.Name = req.Name
	g.Random = rng
	g.Logger = c.logger.With("run", req.Name)
	g.Reinsertion = reinsertion
	g.CrossoverProbability = req.CrossoverProbability
	g.MutationProbability = req.MutationProbability

	g.Termination, err = terminationFor(req)
	if err != nil {
		return nil, err
	}
	g.TaskExecutor, err = executorFor(req.Executor, req.Workers)
	if err != nil {
		return nil, err
	}
	switch req.Strategy {
	case "", "default":
	case "parallel":
		g.OperatorsStrategy = evo.ParallelOperatorsStrategy{MaxGoroutines: req.Workers}
	default:
		return nil, fmt.Errorf("unknown operators strategy: %s", req.Strategy)
	}

	if c.collector != nil {
		c.collector.Attach(g, req.Name)
	}
	return g, nil
}

func terminationFor(req RunRequest) (evo.Termination, error) {
	terminations := []evo.Termination{evo.GenerationNumberTermination{N: req.Generations}}
	if req.FitnessThreshold > 0 {
		if req.FitnessThreshold > 1 {
			return nil, errors.New("fitness threshold must be <= 1")
		}
		terminations = append(terminations, evo.FitnessThresholdTermination{Threshold: req.FitnessThreshold})
	}
	if req.StagnationGenerations > 0 {
		terminations = append(terminations, evo.NewFitnessStagnationTermination(req.StagnationGenerations))
	}
	if req.TimeLimit != "" {
		limit, err := time.ParseDuration(req.TimeLimit)
		if err != nil {
			return nil, fmt.Errorf("time limit: %w", err)
		}
		terminations = append(terminations, evo.TimeEvolvingTermination{MaxTime: limit})
	}
	if len(terminations) == 1 {
		return terminations[0], nil
	}
	return evo.NewOrTermination(terminations...), nil
}

func executorFor(name string, workers int) (executor.TaskExecutor, error) {
	switch name {
	case "", "linear":
		return executor.NewLinear(), nil
	case "parallel":
		return executor.NewParallel(1, workers), nil
	case "task-group":
		return executor.NewTaskGroup(workers), nil
	default:
		return nil, fmt.Errorf("unknown executor: %s", name)
	}
}

func summarize(record model.RunRecord) RunSummary {
	return RunSummary{
		RunID:            record.ID,
		Name:             record.Name,
		State:            record.State,
		Generations:      record.Generations,
		BestFitness:      record.BestFitness,
		BestGenes:        record.BestGenes,
		BestByGeneration: record.BestByGeneration,
		TimeEvolving:     record.TimeEvolving,
		Operators:        record.Operators,
	}
}
