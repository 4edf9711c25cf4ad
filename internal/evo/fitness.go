package evo

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"genetica/internal/model"
)

// Fitness scores a chromosome in [0, 1]. SupportsParallel is read once per
// generation to decide whether evaluation goes through the task executor.
type Fitness interface {
	Evaluate(ctx context.Context, c model.Chromosome) (float64, error)
	SupportsParallel() bool
}

// FitnessFunc adapts a function into a Fitness evaluated sequentially.
type FitnessFunc func(ctx context.Context, c model.Chromosome) (float64, error)

func (f FitnessFunc) Evaluate(ctx context.Context, c model.Chromosome) (float64, error) {
	return f(ctx, c)
}

func (FitnessFunc) SupportsParallel() bool {
	return false
}

// ParallelFitnessFunc adapts a goroutine-safe function into a Fitness.
type ParallelFitnessFunc func(ctx context.Context, c model.Chromosome) (float64, error)

func (f ParallelFitnessFunc) Evaluate(ctx context.Context, c model.Chromosome) (float64, error) {
	return f(ctx, c)
}

func (ParallelFitnessFunc) SupportsParallel() bool {
	return true
}

// CachedFitness memoizes an inner fitness by gene signature. Chromosomes
// with identical genes are evaluated once per TTL window.
type CachedFitness struct {
	inner  Fitness
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedFitness wraps inner. A ttl <= 0 keeps entries forever.
func NewCachedFitness(inner Fitness, ttl time.Duration) *CachedFitness {
	cleanup := ttl * 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &CachedFitness{
		inner: inner,
		cache: cache.New(ttl, cleanup),
	}
}

func (f *CachedFitness) Evaluate(ctx context.Context, c model.Chromosome) (float64, error) {
	key := strings.Join(model.GeneStrings(c), ",")
	if cached, ok := f.cache.Get(key); ok {
		f.hits.Add(1)
		return cached.(float64), nil
	}
	f.misses.Add(1)

	value, err := f.inner.Evaluate(ctx, c)
	if err != nil {
		return 0, err
	}
	f.cache.Set(key, value, cache.DefaultExpiration)
	return value, nil
}

func (f *CachedFitness) SupportsParallel() bool {
	return f.inner.SupportsParallel()
}

func (f *CachedFitness) Hits() int64 {
	return f.hits.Load()
}

func (f *CachedFitness) Misses() int64 {
	return f.misses.Load()
}

func (f *CachedFitness) Len() int {
	return f.cache.ItemCount()
}
