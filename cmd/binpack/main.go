package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
	"github.com/eugenenazirov/bin-packing/internal/comparison"
	"github.com/eugenenazirov/bin-packing/internal/generator"
	"github.com/eugenenazirov/bin-packing/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "binpack:", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	logLevel *string
	maxItems *int
	timeout  *time.Duration

	solve          *kingpin.CmdClause
	solveFile      *string
	solveAlgorithm *string

	compare     *kingpin.CmdClause
	compareFile *string

	sweep            *kingpin.CmdClause
	sweepSizes       *string
	sweepSeed        *uint64
	sweepCapacity    *string
	sweepConcurrency *int
}

func newCLI(stderr io.Writer) *cli {
	app := kingpin.New("binpack", "Bin packing - exact partition search and first-fit from the command line")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	c := &cli{app: app}
	c.logLevel = app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()
	c.maxItems = app.Flag("max-items", "Largest instance the exact solver accepts (0 for no limit)").Default(strconv.Itoa(binpacking.DefaultMaxItems)).Int()
	c.timeout = app.Flag("timeout", "Abort the search after this long (0 for no limit)").Default("0s").Duration()

	c.solve = app.Command("solve", "Solve a YAML instance with one algorithm")
	c.solveFile = c.solve.Flag("file", "YAML instance file").Short('f').Required().String()
	c.solveAlgorithm = c.solve.Flag("algorithm", "Algorithm to use").Default("exact").Enum("exact", "first-fit")

	c.compare = app.Command("compare", "Solve a YAML instance with both algorithms and compare them")
	c.compareFile = c.compare.Flag("file", "YAML instance file").Short('f').Required().String()

	c.sweep = app.Command("sweep", "Compare both algorithms on random instances of the given sizes")
	c.sweepSizes = c.sweep.Flag("sizes", "Comma-separated instance sizes").Default("4,6,8,10").String()
	c.sweepSeed = c.sweep.Flag("seed", "Random seed").Default("1").Uint64()
	c.sweepCapacity = c.sweep.Flag("capacity", "Capacity policy").Default("unit").Enum("sqrt", "unit")
	c.sweepConcurrency = c.sweep.Flag("concurrency", "Instances solved in parallel").Default("4").Int()
	return c
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := newCLI(stderr)
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(*c.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *c.timeout)
		defer cancel()
	}

	exact := binpacking.NewExact(binpacking.WithMaxItems(*c.maxItems))
	greedy := binpacking.NewFirstFit()

	switch command {
	case c.solve.FullCommand():
		return runSolve(ctx, logger, stdout, *c.solveFile, *c.solveAlgorithm, exact, greedy)
	case c.compare.FullCommand():
		return runCompare(ctx, logger, stdout, *c.compareFile, comparison.New(exact, greedy))
	case c.sweep.FullCommand():
		sizes, err := parseSizes(*c.sweepSizes)
		if err != nil {
			return err
		}
		return runSweep(ctx, logger, stdout, comparison.New(exact, greedy), sizes, *c.sweepSeed, *c.sweepCapacity, *c.sweepConcurrency)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

type solveOutput struct {
	Algorithm string              `yaml:"algorithm"`
	Solution  binpacking.Solution `yaml:",inline"`
	Elapsed   time.Duration       `yaml:"elapsed"`
}

func runSolve(ctx context.Context, logger *zap.Logger, w io.Writer, path, algorithm string, solvers ...binpacking.Solver) error {
	instance, err := readInstance(path)
	if err != nil {
		return err
	}

	var solver binpacking.Solver
	for _, s := range solvers {
		if s.Name() == algorithm {
			solver = s
		}
	}
	if solver == nil {
		return fmt.Errorf("unknown algorithm %q", algorithm)
	}

	start := time.Now()
	sol, err := solver.Solve(ctx, instance)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, binpacking.ErrTooManyItems) {
			logger.Warn("instance too large for exhaustive search, try --algorithm first-fit or raise --max-items",
				zap.Int("items", instance.ItemCount))
		}
		return fmt.Errorf("%s: %w", solver.Name(), err)
	}

	logger.Info("solved",
		zap.String("algorithm", solver.Name()),
		zap.Int("items", instance.ItemCount),
		zap.Int("bins", sol.Bins),
		zap.Duration("elapsed", elapsed),
	)
	return writeYAML(w, solveOutput{Algorithm: solver.Name(), Solution: sol, Elapsed: elapsed})
}

func runCompare(ctx context.Context, logger *zap.Logger, w io.Writer, path string, comparator *comparison.Comparator) error {
	instance, err := readInstance(path)
	if err != nil {
		return err
	}

	report, err := comparator.Compare(ctx, instance)
	if err != nil {
		return err
	}

	logger.Info("compared",
		zap.Int("items", instance.ItemCount),
		zap.Float64("ratio", report.Ratio),
		zap.Bool("sub_optimal", report.SubOptimal),
	)
	return writeYAML(w, report)
}

func runSweep(ctx context.Context, logger *zap.Logger, w io.Writer, comparator *comparison.Comparator, sizes []int, seed uint64, capacity string, concurrency int) error {
	policy, err := generator.PolicyByName(capacity)
	if err != nil {
		return err
	}

	summary, err := comparator.Sweep(ctx, generator.New(seed, generator.WithCapacity(policy)), sizes, concurrency)
	if err != nil {
		return err
	}

	logger.Info("sweep finished",
		zap.Ints("sizes", sizes),
		zap.Int("sub_optimal", summary.SubOptimal),
		zap.Float64("max_ratio", summary.MaxRatio),
	)
	return writeYAML(w, summary)
}

// instanceFile mirrors binpacking.Instance; item_count defaults to the number of weights.
type instanceFile struct {
	ItemCount *int      `yaml:"item_count"`
	Weights   []float64 `yaml:"weights"`
	Capacity  float64   `yaml:"capacity"`
}

func readInstance(path string) (binpacking.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return binpacking.Instance{}, fmt.Errorf("read instance: %w", err)
	}

	var f instanceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return binpacking.Instance{}, fmt.Errorf("parse instance %s: %w", path, err)
	}

	instance := binpacking.NewInstance(f.Weights, f.Capacity)
	if f.ItemCount != nil {
		instance.ItemCount = *f.ItemCount
	}
	return instance, nil
}

func parseSizes(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid size %q: must be a positive integer", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, errors.New("at least one size is required")
	}
	return sizes, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
