package binpacking

import "context"

// FirstFit packs items in input order into the earliest opened bin with room.
type FirstFit struct{}

// NewFirstFit creates a first-fit solver.
func NewFirstFit() *FirstFit {
	return &FirstFit{}
}

// Name implements Solver.
func (f *FirstFit) Name() string { return "first-fit" }

// openBin accumulates load in item order, the same order Block.Weight sums in,
// so a bin first-fit accepts is always one IsValid accepts.
type openBin struct {
	items Block
	load  float64
}

// Solve never backtracks, so the result is deterministic for a given item order
// but may use more bins than necessary. The context is unused because the
// algorithm runs in O(n·bins) without blocking.
func (f *FirstFit) Solve(_ context.Context, instance Instance) (Solution, error) {
	if err := instance.Validate(); err != nil {
		return Solution{}, err
	}

	var bins []openBin
	for id, w := range instance.Weights {
		placed := false
		for i := range bins {
			if bins[i].load+w <= instance.Capacity {
				bins[i].items = append(bins[i].items, id)
				bins[i].load += w
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, openBin{items: Block{id}, load: w})
		}
	}

	partition := make(Partition, len(bins))
	for i, bin := range bins {
		partition[i] = bin.items
	}
	return Solution{Partition: partition, Bins: len(partition)}, nil
}

// SolveGreedy runs first-fit on the given items.
func SolveGreedy(itemCount int, weights []float64, capacity float64) (Solution, error) {
	return NewFirstFit().Solve(context.Background(), Instance{ItemCount: itemCount, Weights: weights, Capacity: capacity})
}
