package binpacking

import (
	"iter"
	"slices"
)

// Partitions lazily yields every partition of the items 0..len(weights)-1 whose
// blocks all fit within capacity. Each partition is yielded exactly once, except
// the all-singletons partition, which is never yielded. Callers use it as the
// baseline instead.
//
// Every yielded partition is an independent copy that the caller may keep.
// Output grows with the Bell number of the item count, and recursion depth
// equals the item count.
func Partitions(weights []float64, capacity float64) iter.Seq[Partition] {
	e := enumeration{weights: weights, capacity: capacity, n: len(weights)}
	return func(yield func(Partition) bool) {
		// A single item can only form the all-singletons partition.
		if e.n <= 1 {
			return
		}
		for p := range e.from(0) {
			if !yield(p) {
				return
			}
		}
	}
}

type enumeration struct {
	weights  []float64
	capacity float64
	n        int
}

// from yields the valid partitions of items k..n-1. Each one is built by placing
// item k into a partition of items k+1..n-1.
func (e enumeration) from(k int) iter.Seq[Partition] {
	return func(yield func(Partition) bool) {
		if k == e.n-1 {
			yield(Partition{Block{k}})
			return
		}

		for sub := range e.from(k + 1) {
			for i := range sub {
				enlarged := slices.Insert(slices.Clone(sub[i]), 0, k)
				if !IsValid(enlarged, e.weights, e.capacity) {
					continue
				}
				if !yield(withBlock(sub, i, enlarged)) {
					return
				}
			}

			// Only the top level can produce n blocks, which would be the all-singletons baseline.
			if len(sub)+1 < e.n {
				if !yield(withSingleton(sub, k)) {
					return
				}
			}
		}
	}
}

// withBlock copies p, replacing block i.
func withBlock(p Partition, i int, block Block) Partition {
	out := make(Partition, len(p))
	for j, b := range p {
		if j == i {
			out[j] = block
			continue
		}
		out[j] = slices.Clone(b)
	}
	return out
}

// withSingleton copies p with a new leading block holding only item.
func withSingleton(p Partition, item int) Partition {
	out := make(Partition, 0, len(p)+1)
	out = append(out, Block{item})
	return append(out, p.Clone()...)
}
