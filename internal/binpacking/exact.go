package binpacking

import (
	"context"
	"fmt"
)

const (
	// DefaultMaxItems is the largest instance the exact solver accepts by default.
	// Enumeration grows with the Bell number, so runtime becomes impractical just above it.
	DefaultMaxItems = 13
	// DefaultCheckInterval is how many candidates are examined between cancellation checks.
	DefaultCheckInterval = 1024
)

// Exact finds a minimal packing by enumerating every valid partition.
type Exact struct {
	maxItems      int
	checkInterval int
}

// ExactOption configures an Exact solver.
type ExactOption func(*Exact)

// WithMaxItems sets the operating limit on item count. Zero disables the limit.
func WithMaxItems(n int) ExactOption {
	return func(e *Exact) {
		if n >= 0 {
			e.maxItems = n
		}
	}
}

// WithCheckInterval sets how often the search polls its context.
func WithCheckInterval(n int) ExactOption {
	return func(e *Exact) {
		if n > 0 {
			e.checkInterval = n
		}
	}
}

// NewExact creates an exact solver.
func NewExact(opts ...ExactOption) *Exact {
	e := &Exact{
		maxItems:      DefaultMaxItems,
		checkInterval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Solver.
func (e *Exact) Name() string { return "exact" }

// MaxItems returns the configured operating limit, zero meaning unlimited.
func (e *Exact) MaxItems() int { return e.maxItems }

// Solve returns a partition with the fewest possible bins. The all-singletons
// partition is the starting point and is replaced only by a strictly smaller
// candidate, so the first minimum in enumeration order is returned.
func (e *Exact) Solve(ctx context.Context, instance Instance) (Solution, error) {
	if err := instance.Validate(); err != nil {
		return Solution{}, err
	}
	if e.maxItems > 0 && instance.ItemCount > e.maxItems {
		return Solution{}, fmt.Errorf("%w: %d items, limit is %d", ErrTooManyItems, instance.ItemCount, e.maxItems)
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, fmt.Errorf("%w: %w", ErrSearchAborted, err)
	}

	best := singletons(instance.ItemCount)
	examined := 0
	for candidate := range Partitions(instance.Weights, instance.Capacity) {
		if len(candidate) < len(best) {
			best = candidate
		}

		examined++
		if examined%e.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Solution{}, fmt.Errorf("%w after %d candidates: %w", ErrSearchAborted, examined, err)
			}
		}
	}

	return Solution{Partition: best, Bins: len(best)}, nil
}

// SolveExact runs the exact solver with default options on the given items.
func SolveExact(ctx context.Context, itemCount int, weights []float64, capacity float64) (Solution, error) {
	return NewExact().Solve(ctx, Instance{ItemCount: itemCount, Weights: weights, Capacity: capacity})
}
