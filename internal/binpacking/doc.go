// Package binpacking partitions weighted items into the fewest bins of a fixed
// capacity. Exact enumerates every valid set partition and is only practical for
// about a dozen items. FirstFit is a fast greedy heuristic that never uses fewer
// bins than Exact.
package binpacking
