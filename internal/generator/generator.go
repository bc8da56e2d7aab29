// Package generator produces reproducible random bin packing instances for
// benchmarks and comparison sweeps.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
)

const (
	// DefaultMaxItems bounds the size of a generated instance.
	DefaultMaxItems = 100
	defaultAttempts = 10_000
)

var (
	// ErrInvalidSize is returned when the requested item count is out of range.
	ErrInvalidSize = errors.New("item count must be between 1 and the generator limit")
	// ErrUnsatisfiable is returned when no sample exceeds a single bin within the attempt budget.
	ErrUnsatisfiable = errors.New("could not sample weights that overflow a single bin")
)

// CapacityPolicy derives the bin capacity from the number of items.
type CapacityPolicy func(items int) float64

// SqrtCapacity scales capacity with the square root of the item count.
func SqrtCapacity(items int) float64 {
	return math.Sqrt(float64(items))
}

// UnitCapacity always returns 1.
func UnitCapacity(int) float64 {
	return 1
}

// FixedCapacity returns a policy with a constant capacity.
func FixedCapacity(capacity float64) CapacityPolicy {
	return func(int) float64 { return capacity }
}

// PolicyByName resolves "sqrt" or "unit" to a policy.
func PolicyByName(name string) (CapacityPolicy, error) {
	switch name {
	case "", "sqrt":
		return SqrtCapacity, nil
	case "unit":
		return UnitCapacity, nil
	default:
		return nil, fmt.Errorf("unknown capacity policy %q", name)
	}
}

// Generator samples weights uniformly in [0, 1).
type Generator struct {
	rng      *rand.Rand
	capacity CapacityPolicy
	maxItems int
	attempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithCapacity sets the capacity policy.
func WithCapacity(policy CapacityPolicy) Option {
	return func(g *Generator) {
		if policy != nil {
			g.capacity = policy
		}
	}
}

// WithMaxItems overrides the largest instance the generator accepts.
func WithMaxItems(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxItems = n
		}
	}
}

// WithAttempts bounds how many times weights are resampled.
func WithAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.attempts = n
		}
	}
}

// New creates a generator whose output is fully determined by seed.
// A Generator is not safe for concurrent use.
func New(seed uint64, opts ...Option) *Generator {
	g := &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		capacity: SqrtCapacity,
		maxItems: DefaultMaxItems,
		attempts: defaultAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns an instance of n items whose total weight exceeds the capacity,
// so at least two bins are always required.
func (g *Generator) Generate(n int) (binpacking.Instance, error) {
	if n < 1 || n > g.maxItems {
		return binpacking.Instance{}, fmt.Errorf("%w: got %d, limit is %d", ErrInvalidSize, n, g.maxItems)
	}
	capacity := g.capacity(n)
	if !(capacity > 0) {
		return binpacking.Instance{}, fmt.Errorf("%w: got %g", binpacking.ErrInvalidCapacity, capacity)
	}

	weights := make([]float64, n)
	for attempt := 0; attempt < g.attempts; attempt++ {
		sum := 0.0
		for i := range weights {
			weights[i] = g.rng.Float64()
			sum += weights[i]
		}
		if sum > capacity {
			return binpacking.NewInstance(weights, capacity), nil
		}
	}
	return binpacking.Instance{}, fmt.Errorf("%w: %d items, capacity %g, %d attempts", ErrUnsatisfiable, n, capacity, g.attempts)
}
