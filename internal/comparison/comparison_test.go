package comparison

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/bin-packing/internal/binpacking"
	"github.com/eugenenazirov/bin-packing/internal/generator"
)

type recordingObserver struct {
	mu     sync.Mutex
	solves map[string]int
	ratios []float64
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{solves: map[string]int{}}
}

func (o *recordingObserver) ObserveSolve(solver string, _ time.Duration, _ int, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.solves[solver]++
}

func (o *recordingObserver) ObserveRatio(ratio float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ratios = append(o.ratios, ratio)
}

type fixedSolver struct {
	name string
	sol  binpacking.Solution
}

func (f fixedSolver) Name() string { return f.name }

func (f fixedSolver) Solve(context.Context, binpacking.Instance) (binpacking.Solution, error) {
	return f.sol, nil
}

func TestCompareReferenceInstance(t *testing.T) {
	t.Parallel()

	observer := newRecordingObserver()
	comparator := New(binpacking.NewExact(), binpacking.NewFirstFit(), WithObserver(observer))

	report, err := comparator.Compare(context.Background(), binpacking.NewInstance([]float64{1.0, 1.4, 0.6, 1.0}, 2))
	require.NoError(t, err)
	require.NotNil(t, report.Exact)
	require.Equal(t, 2, report.Exact.Bins)
	require.Equal(t, 3, report.Greedy.Bins)
	require.InDelta(t, 1.5, report.Ratio, 1e-12)
	require.True(t, report.SubOptimal)

	require.Equal(t, map[string]int{"exact": 1, "first-fit": 1}, observer.solves)
	require.Equal(t, []float64{1.5}, observer.ratios)
}

func TestCompareOptimalGreedy(t *testing.T) {
	t.Parallel()

	comparator := New(binpacking.NewExact(), binpacking.NewFirstFit())
	report, err := comparator.Compare(context.Background(),
		binpacking.NewInstance([]float64{0.50, 1.25, 1.00, 1.75, 0.75, 1.50}, 2.5))
	require.NoError(t, err)
	require.Equal(t, 1.0, report.Ratio)
	require.False(t, report.SubOptimal)
}

func TestCompareLoadsThatRoundPastCapacity(t *testing.T) {
	t.Parallel()

	comparator := New(binpacking.NewExact(), binpacking.NewFirstFit())
	report, err := comparator.Compare(context.Background(),
		binpacking.NewInstance([]float64{0.2, 0.4, 0.3, 0.1}, 1))
	require.NoError(t, err)
	require.Equal(t, 2, report.Exact.Bins)
	require.Equal(t, 2, report.Greedy.Bins)
	require.False(t, report.SubOptimal)
}

func TestCompareDetectsDominanceViolation(t *testing.T) {
	t.Parallel()

	exact := fixedSolver{name: "exact", sol: binpacking.Solution{Partition: binpacking.Partition{{0}, {1}}, Bins: 2}}
	greedy := fixedSolver{name: "first-fit", sol: binpacking.Solution{Partition: binpacking.Partition{{0, 1}}, Bins: 1}}

	_, err := New(exact, greedy).Compare(context.Background(), binpacking.NewInstance([]float64{0.1, 0.1}, 1))
	require.ErrorIs(t, err, ErrDominance)
}

func TestCompareSurfacesSolverErrors(t *testing.T) {
	t.Parallel()

	comparator := New(binpacking.NewExact(binpacking.WithMaxItems(2)), binpacking.NewFirstFit())

	_, err := comparator.Compare(context.Background(), binpacking.NewInstance([]float64{0.5}, 0.4))
	require.ErrorIs(t, err, binpacking.ErrItemTooHeavy)

	_, err = comparator.Compare(context.Background(), binpacking.NewInstance([]float64{0.1, 0.1, 0.1}, 1))
	require.ErrorIs(t, err, binpacking.ErrTooManyItems)
}

func TestSweep(t *testing.T) {
	t.Parallel()

	observer := newRecordingObserver()
	comparator := New(binpacking.NewExact(binpacking.WithMaxItems(8)), binpacking.NewFirstFit(), WithObserver(observer))
	sizes := []int{4, 6, 8, 20}

	summary, err := comparator.Sweep(context.Background(), generator.New(3, generator.WithCapacity(generator.UnitCapacity)), sizes, 3)
	require.NoError(t, err)
	require.Len(t, summary.Reports, len(sizes))

	subOptimal := 0
	for i, report := range summary.Reports {
		require.Equal(t, sizes[i], report.Instance.ItemCount)
		if sizes[i] > 8 {
			require.Nil(t, report.Exact)
			require.Zero(t, report.Ratio)
			continue
		}
		require.NotNil(t, report.Exact)
		require.LessOrEqual(t, report.Exact.Bins, report.Greedy.Bins)
		require.GreaterOrEqual(t, report.Ratio, 1.0)
		require.LessOrEqual(t, report.Ratio, summary.MaxRatio)
		if report.SubOptimal {
			subOptimal++
		}
	}
	require.Equal(t, subOptimal, summary.SubOptimal)
	require.Equal(t, len(sizes), observer.solves["first-fit"])
}

func TestSweepIsReproducible(t *testing.T) {
	t.Parallel()

	comparator := New(binpacking.NewExact(), binpacking.NewFirstFit())
	sizes := []int{5, 6, 7}

	first, err := comparator.Sweep(context.Background(), generator.New(11), sizes, 2)
	require.NoError(t, err)
	second, err := comparator.Sweep(context.Background(), generator.New(11), sizes, 1)
	require.NoError(t, err)

	for i := range sizes {
		require.Equal(t, first.Reports[i].Instance, second.Reports[i].Instance)
		require.Equal(t, first.Reports[i].Exact, second.Reports[i].Exact)
		require.Equal(t, first.Reports[i].Greedy, second.Reports[i].Greedy)
	}
}

func TestSweepPropagatesGeneratorErrors(t *testing.T) {
	t.Parallel()

	comparator := New(binpacking.NewExact(), binpacking.NewFirstFit())
	_, err := comparator.Sweep(context.Background(), generator.New(1, generator.WithMaxItems(4)), []int{2, 5}, 1)
	require.ErrorIs(t, err, generator.ErrInvalidSize)
}
