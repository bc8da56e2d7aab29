package binpacking

// IsValid reports whether the block's total weight fits within capacity.
// An empty block is always valid.
func IsValid(block Block, weights []float64, capacity float64) bool {
	return block.Weight(weights) <= capacity
}
