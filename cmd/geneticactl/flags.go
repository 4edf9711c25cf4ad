package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"genetica/internal/storage"
	"genetica/pkg/genetica"
)

type commonFlags struct {
	storeKind     string
	dbPath        string
	logLevel      string
	maxConcurrent int
}

func addCommonFlags(fs *pflag.FlagSet) *commonFlags {
	f := &commonFlags{}
	fs.StringVar(&f.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	fs.StringVar(&f.dbPath, "db-path", "genetica.db", "sqlite database path")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	return f
}

func (f *commonFlags) newClient(ctx context.Context, reg prometheus.Registerer) (*genetica.Client, error) {
	logger, err := newLogger(f.logLevel)
	if err != nil {
		return nil, err
	}
	client, err := genetica.New(genetica.Options{
		StoreKind:     f.storeKind,
		DBPath:        f.dbPath,
		Logger:        logger,
		MaxConcurrent: f.maxConcurrent,
		Registerer:    reg,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// bindRunFlags binds one flag per RunRequest field, defaulting to the
// values already in req.
func bindRunFlags(fs *pflag.FlagSet, req *genetica.RunRequest) {
	fs.StringVar(&req.Name, "name", req.Name, "run name (default: the problem name)")
	fs.StringVar(&req.Problem, "problem", req.Problem, "sample problem: onemax|tsp")
	fs.IntVar(&req.Genes, "genes", req.Genes, "bits for onemax, cities for tsp")
	fs.IntVar(&req.MinSize, "min-size", req.MinSize, "population min size")
	fs.IntVar(&req.MaxSize, "max-size", req.MaxSize, "population max size")
	fs.Int64Var(&req.Seed, "seed", req.Seed, "random seed (0 = time seeded)")
	fs.IntVar(&req.Generations, "generations", req.Generations, "max generations")
	fs.Float64Var(&req.FitnessThreshold, "fitness-threshold", req.FitnessThreshold, "stop once best fitness reaches this value")
	fs.IntVar(&req.StagnationGenerations, "stagnation", req.StagnationGenerations, "stop after this many generations without improvement")
	fs.StringVar(&req.TimeLimit, "time-limit", req.TimeLimit, "stop after evolving this long, e.g. 30s")
	fs.StringVar(&req.Selection, "selection", req.Selection, "selection operator")
	fs.StringVar(&req.Crossover, "crossover", req.Crossover, "crossover operator")
	fs.StringVar(&req.Mutation, "mutation", req.Mutation, "mutation operator")
	fs.StringVar(&req.Reinsertion, "reinsertion", req.Reinsertion, "reinsertion operator")
	fs.Float64Var(&req.CrossoverProbability, "crossover-probability", req.CrossoverProbability, "crossover probability (0 = default)")
	fs.Float64Var(&req.MutationProbability, "mutation-probability", req.MutationProbability, "mutation probability (0 = default)")
	fs.StringVar(&req.Executor, "executor", req.Executor, "task executor: linear|parallel|task-group")
	fs.IntVar(&req.Workers, "workers", req.Workers, "workers for parallel executors and operators")
	fs.StringVar(&req.Strategy, "strategy", req.Strategy, "operators strategy: default|parallel")
	fs.StringVar(&req.GenerationStrategy, "generation-strategy", req.GenerationStrategy, "generation strategy: tracking|performance")
	fs.BoolVar(&req.CacheFitness, "cache-fitness", req.CacheFitness, "memoize fitness by genes")
	fs.StringVar(&req.EvaluationTimeout, "evaluation-timeout", req.EvaluationTimeout, "per-generation budget for parallel evaluation, e.g. 5s")
}

// resolveRunRequest loads the config file, if any, and applies every run
// flag set on the command line on top of it.
func resolveRunRequest(fs *pflag.FlagSet, configPath string) (genetica.RunRequest, error) {
	var req genetica.RunRequest
	if configPath != "" {
		loaded, err := loadRunRequestFromConfig(configPath)
		if err != nil {
			return genetica.RunRequest{}, err
		}
		req = loaded
	}

	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	bindRunFlags(overlay, &req)
	var setErr error
	fs.Visit(func(f *pflag.Flag) {
		if setErr != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		if err := overlay.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return genetica.RunRequest{}, setErr
	}
	return req, nil
}
