package binpacking

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Block is the set of item ids packed into one bin, kept in ascending order.
type Block []int

// Weight returns the total weight of the block's items.
func (b Block) Weight(weights []float64) float64 {
	sum := 0.0
	for _, id := range b {
		sum += weights[id]
	}
	return sum
}

// Partition is an ordered collection of disjoint blocks covering every item exactly once.
type Partition []Block

// Clone returns a deep copy that shares no block storage with p.
func (p Partition) Clone() Partition {
	out := make(Partition, len(p))
	for i, block := range p {
		out[i] = slices.Clone(block)
	}
	return out
}

// Solution pairs a partition with its number of bins.
type Solution struct {
	Partition Partition `json:"partition" yaml:"partition"`
	Bins      int       `json:"bins" yaml:"bins"`
}

// Instance describes one bin packing problem.
type Instance struct {
	ItemCount int       `json:"itemCount" yaml:"item_count"`
	Weights   []float64 `json:"weights" yaml:"weights"`
	Capacity  float64   `json:"capacity" yaml:"capacity"`
}

// NewInstance builds an instance whose item count is taken from the weights.
func NewInstance(weights []float64, capacity float64) Instance {
	return Instance{
		ItemCount: len(weights),
		Weights:   slices.Clone(weights),
		Capacity:  capacity,
	}
}

// Validate checks every precondition shared by the solvers.
func (in Instance) Validate() error {
	if len(in.Weights) != in.ItemCount {
		return fmt.Errorf("%w: declared %d, got %d weights", ErrItemCountMismatch, in.ItemCount, len(in.Weights))
	}
	if in.ItemCount == 0 {
		return ErrNoItems
	}
	if math.IsNaN(in.Capacity) || in.Capacity <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidCapacity, in.Capacity)
	}
	for id, w := range in.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: item %d has weight %g", ErrInvalidWeight, id, w)
		}
		if w > in.Capacity {
			return fmt.Errorf("%w: item %d weighs %g, capacity is %g", ErrItemTooHeavy, id, w, in.Capacity)
		}
	}
	return nil
}

// Solver describes the behaviour required from a bin packing algorithm.
type Solver interface {
	Name() string
	Solve(ctx context.Context, instance Instance) (Solution, error)
}

// singletons returns the one-item-per-bin partition of n items.
func singletons(n int) Partition {
	p := make(Partition, n)
	for id := range n {
		p[id] = Block{id}
	}
	return p
}
