package comparison

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
)

// InstanceSource produces instances of a requested size.
type InstanceSource interface {
	Generate(items int) (binpacking.Instance, error)
}

// Summary aggregates the reports of a sweep.
type Summary struct {
	Reports    []Report `json:"reports" yaml:"reports"`
	SubOptimal int      `json:"subOptimal" yaml:"sub_optimal"`
	MaxRatio   float64  `json:"maxRatio" yaml:"max_ratio"`
}

// Sweep generates one instance per size and compares the solvers on each.
// Instances are drawn sequentially so a seeded source stays reproducible, then
// solved on up to concurrency goroutines. Sizes past the exact solver's limit
// still get a first-fit report with Exact left nil.
func (c *Comparator) Sweep(ctx context.Context, source InstanceSource, sizes []int, concurrency int) (Summary, error) {
	instances := make([]binpacking.Instance, len(sizes))
	for i, n := range sizes {
		instance, err := source.Generate(n)
		if err != nil {
			return Summary{}, fmt.Errorf("generate %d items: %w", n, err)
		}
		instances[i] = instance
	}

	if concurrency < 1 {
		concurrency = 1
	}
	reports := make([]Report, len(instances))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, instance := range instances {
		g.Go(func() error {
			report, err := c.compare(gctx, instance, true)
			if err != nil {
				return fmt.Errorf("instance %d (%d items): %w", i, instance.ItemCount, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Reports: reports}
	for _, r := range reports {
		if r.SubOptimal {
			summary.SubOptimal++
		}
		summary.MaxRatio = max(summary.MaxRatio, r.Ratio)
	}
	return summary, nil
}
