// Package randomization holds the random sources used by stochastic operators.
//
// A Provider is owned by one genetic algorithm instance rather than shared
// process-wide, so independent runs stay isolated and reproducible under a seed.
// Basic is safe for concurrent use; parallel operator strategies rely on that.
package randomization

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const defaultSeed int64 = 1

// Provider is the source of randomness consumed by operators and chromosomes.
type Provider interface {
	Float64() float64
	Float64Range(min, max float64) float64
	IntN(n int) int
	IntRange(min, max int) int
	Ints(length, min, max int) []int
	UniqueInts(length, min, max int) ([]int, error)
}

// Basic wraps a *rand.Rand behind a mutex.
type Basic struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// NewBasic returns a provider seeded with seed. A zero seed maps to a fixed
// default so the zero value of a config is still deterministic.
func NewBasic(seed int64) *Basic {
	if seed == 0 {
		seed = defaultSeed
	}
	return &Basic{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// NewTimeSeeded returns a provider seeded from the wall clock.
func NewTimeSeeded() *Basic {
	return NewBasic(time.Now().UnixNano())
}

func (b *Basic) Seed() int64 {
	return b.seed
}

func (b *Basic) Float64() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Float64()
}

// Float64Range returns a value in [min, max).
func (b *Basic) Float64Range(min, max float64) float64 {
	return min + b.Float64()*(max-min)
}

// IntN returns a value in [0, n). It panics if n <= 0, like rand.Intn.
func (b *Basic) IntN(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(n)
}

// IntRange returns a value in [min, max).
func (b *Basic) IntRange(min, max int) int {
	return min + b.IntN(max-min)
}

// Ints returns length values in [min, max), duplicates allowed.
func (b *Basic) Ints(length, min, max int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int, length)
	for i := range out {
		out[i] = min + b.rng.Intn(max-min)
	}
	return out
}

// UniqueInts returns length distinct values in [min, max).
func (b *Basic) UniqueInts(length, min, max int) ([]int, error) {
	span := max - min
	if length < 0 || length > span {
		return nil, fmt.Errorf("cannot pick %d unique ints from [%d, %d)", length, min, max)
	}

	b.mu.Lock()
	perm := b.rng.Perm(span)
	b.mu.Unlock()

	out := perm[:length]
	for i := range out {
		out[i] += min
	}
	return out, nil
}

// Derive returns an independent provider for stream, mixed from this
// provider's seed with a SplitMix64 step. Workers that want thread-confined
// randomness take one stream each.
func (b *Basic) Derive(stream uint64) *Basic {
	return NewBasic(int64(splitMix64(uint64(b.seed) ^ (stream + 0x9E3779B97F4A7C15))))
}

func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
