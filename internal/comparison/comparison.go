// Package comparison runs the exact and first-fit solvers on identical instances
// and measures how far the heuristic strays from the optimum.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
)

// ErrDominance is returned when the heuristic beats the exact solver, which can
// only mean one of the solvers is broken.
var ErrDominance = errors.New("heuristic used fewer bins than the exact solver")

// Report is the outcome of running both solvers on one instance. Exact is nil
// when the instance was too large for exhaustive search.
type Report struct {
	Instance      binpacking.Instance  `json:"instance" yaml:"instance"`
	Exact         *binpacking.Solution `json:"exact,omitempty" yaml:"exact,omitempty"`
	Greedy        binpacking.Solution  `json:"greedy" yaml:"greedy"`
	ExactElapsed  time.Duration        `json:"exactElapsedNs" yaml:"exact_elapsed"`
	GreedyElapsed time.Duration        `json:"greedyElapsedNs" yaml:"greedy_elapsed"`
	Ratio         float64              `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	SubOptimal    bool                 `json:"subOptimal" yaml:"sub_optimal"`
}

// Observer receives the result of every individual solve.
type Observer interface {
	ObserveSolve(solver string, elapsed time.Duration, bins int, err error)
	ObserveRatio(ratio float64)
}

// Comparator pairs an exact solver with a heuristic.
type Comparator struct {
	exact    binpacking.Solver
	greedy   binpacking.Solver
	observer Observer
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithObserver reports every solve to o.
func WithObserver(o Observer) Option {
	return func(c *Comparator) {
		c.observer = o
	}
}

// New creates a Comparator from the two solvers.
func New(exact, greedy binpacking.Solver, opts ...Option) *Comparator {
	c := &Comparator{exact: exact, greedy: greedy}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare solves instance with both solvers.
func (c *Comparator) Compare(ctx context.Context, instance binpacking.Instance) (Report, error) {
	return c.compare(ctx, instance, false)
}

// compare keeps the first-fit report when the instance is beyond the exact
// solver's limit and greedyFallback is set.
func (c *Comparator) compare(ctx context.Context, instance binpacking.Instance, greedyFallback bool) (Report, error) {
	report, err := c.greedyOnly(ctx, instance)
	if err != nil {
		return Report{}, err
	}

	exact, elapsed, err := c.run(ctx, c.exact, instance)
	if greedyFallback && errors.Is(err, binpacking.ErrTooManyItems) {
		return report, nil
	}
	if err != nil {
		return Report{}, fmt.Errorf("%s solver: %w", c.exact.Name(), err)
	}
	report.Exact = &exact
	report.ExactElapsed = elapsed

	if report.Greedy.Bins < exact.Bins {
		return Report{}, fmt.Errorf("%w: %d < %d", ErrDominance, report.Greedy.Bins, exact.Bins)
	}
	report.Ratio = float64(report.Greedy.Bins) / float64(exact.Bins)
	report.SubOptimal = report.Greedy.Bins > exact.Bins
	if c.observer != nil {
		c.observer.ObserveRatio(report.Ratio)
	}
	return report, nil
}

func (c *Comparator) greedyOnly(ctx context.Context, instance binpacking.Instance) (Report, error) {
	greedy, elapsed, err := c.run(ctx, c.greedy, instance)
	if err != nil {
		return Report{}, fmt.Errorf("%s solver: %w", c.greedy.Name(), err)
	}
	return Report{
		Instance:      instance,
		Greedy:        greedy,
		GreedyElapsed: elapsed,
	}, nil
}

func (c *Comparator) run(ctx context.Context, solver binpacking.Solver, instance binpacking.Instance) (binpacking.Solution, time.Duration, error) {
	start := time.Now()
	sol, err := solver.Solve(ctx, instance)
	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveSolve(solver.Name(), elapsed, sol.Bins, err)
	}
	return sol, elapsed, err
}
