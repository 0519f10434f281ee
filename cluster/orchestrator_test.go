package cluster_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/capclust/cluster"
	"github.com/katalvlaran/capclust/solver"
)

func runScripted(t *testing.T, fake *scripted, workers int, opts ...cluster.Option) (*cluster.Result, error) {
	t.Helper()
	coords, w := square()
	base := []cluster.Option{
		cluster.WithSolver(fake),
		cluster.WithRestarts(len(fake.objs)),
		cluster.WithWorkers(workers),
		cluster.WithPrintMode(cluster.PrintNone),
	}

	return cluster.Run(context.Background(), coords, w, 2, append(base, opts...)...)
}

func TestRun_TieGoesToEarliestRestart(t *testing.T) {
	for _, workers := range []int{1, 4} {
		fake := &scripted{
			objs: []float64{5, 3, 3, 4},
			// Restart 2 finishes last under parallel execution.
			delay: map[int]time.Duration{2: 30 * time.Millisecond},
		}
		res, err := runScripted(t, fake, workers)
		require.NoError(t, err, "workers=%d", workers)

		assert.Equal(t, 2, res.Restart, "workers=%d", workers)
		assert.Equal(t, 2, res.Iterations, "the result object of restart 2 is kept")
		assert.Equal(t, 3.0, res.Objective)
		assert.Equal(t, []float64{5, 3, 3, 4}, res.Objectives)
		assert.EqualValues(t, 4, fake.calls.Load())
	}
}

func TestRun_FailedRestartsAreDiscarded(t *testing.T) {
	for _, workers := range []int{1, 3} {
		fake := &scripted{objs: []float64{1, 7, 2}, fail: map[int]bool{1: true}}
		rec := &recorder{}
		res, err := runScripted(t, fake, workers, cluster.WithMetrics(rec))
		require.NoError(t, err)

		assert.Equal(t, 3, res.Restart)
		assert.True(t, math.IsNaN(res.Objectives[0]))
		require.Len(t, res.Failures, 1)

		var re *cluster.RestartError
		require.ErrorAs(t, res.Failures[0], &re)
		assert.Equal(t, 1, re.Restart)
		assert.ErrorIs(t, res.Failures[0], cluster.ErrSolverFailure)
		assert.ErrorIs(t, res.Failures[0], errScripted)

		sort.Ints(rec.restarts)
		assert.Equal(t, []int{1, 2, 3}, rec.restarts)
		assert.Equal(t, 1, rec.failed)
		assert.Equal(t, 1, rec.runs)
		assert.Equal(t, 1, rec.runFails)
		assert.Equal(t, 2.0, rec.best)
	}
}

func TestRun_NonFiniteObjectiveIsDiscarded(t *testing.T) {
	for _, workers := range []int{1, 3} {
		fake := &scripted{objs: []float64{math.NaN(), 2, 1}}
		res, err := runScripted(t, fake, workers)
		require.NoError(t, err, "workers=%d", workers)

		assert.Equal(t, 3, res.Restart, "workers=%d", workers)
		assert.Equal(t, 1.0, res.Objective)
		assert.True(t, math.IsNaN(res.Objectives[0]))
		assert.Equal(t, []float64{2, 1}, res.Objectives[1:])
		require.Len(t, res.Failures, 1)

		var re *cluster.RestartError
		require.ErrorAs(t, res.Failures[0], &re)
		assert.Equal(t, 1, re.Restart)
		assert.ErrorIs(t, res.Failures[0], cluster.ErrSolverFailure)
		assert.Contains(t, res.Failures[0].Error(), "non-finite objective")
	}

	fake := &scripted{objs: []float64{math.Inf(1), math.NaN()}}
	_, err := runScripted(t, fake, 1)
	assert.ErrorIs(t, err, cluster.ErrNoFeasibleRestart)
}

func TestRun_AllRestartsFail(t *testing.T) {
	fake := &scripted{objs: []float64{1, 1}, fail: map[int]bool{1: true, 2: true}}
	res, err := runScripted(t, fake, 1)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, cluster.ErrNoFeasibleRestart)
	assert.ErrorIs(t, err, cluster.ErrSolverFailure)
	assert.ErrorIs(t, err, errScripted)
}

func TestRun_DistinctReproducibleSeeds(t *testing.T) {
	fake := &scripted{objs: []float64{1, 1, 1}}
	_, err := runScripted(t, fake, 1, cluster.WithSeed(99))
	require.NoError(t, err)

	want := []int64{cluster.RestartSeed(99, 1), cluster.RestartSeed(99, 2), cluster.RestartSeed(99, 3)}
	assert.Equal(t, want, fake.seeds)
	assert.NotEqual(t, fake.seeds[0], fake.seeds[1])
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	coords, w := square()

	for _, workers := range []int{1, 2} {
		fake := &scripted{objs: []float64{1, 2}}
		_, err := cluster.Run(ctx, coords, w, 2,
			cluster.WithSolver(fake),
			cluster.WithRestarts(2),
			cluster.WithWorkers(workers),
			cluster.WithPrintMode(cluster.PrintNone),
		)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, fake.calls.Load())
	}
}

func TestRun_SingleRestartMatchesDirectSolve(t *testing.T) {
	coords, w := grid()
	opts := []cluster.Option{
		cluster.WithRestarts(1),
		cluster.WithSeed(11),
		cluster.WithRange(50, 150),
		cluster.WithPrintMode(cluster.PrintNone),
	}

	res, err := cluster.Run(context.Background(), coords, w, 4, opts...)
	require.NoError(t, err)

	p, err := cluster.Prepare(coords, w, 4, opts...)
	require.NoError(t, err)
	direct, err := solver.Lloyd{}.Solve(p, solver.Start{Index: 1, Seed: cluster.RestartSeed(11, 1)})
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(*direct, res.Result))
	assert.Equal(t, 1, res.Restart)
}

func TestRun_EndToEnd(t *testing.T) {
	coords, w := grid()
	var sum float64
	for _, v := range w {
		sum += v
	}
	low, high := sum/4-50, sum/4+50

	res, err := cluster.Run(context.Background(), coords, w, 4,
		cluster.WithRestarts(5),
		cluster.WithRange(low, high),
		cluster.WithNormalization(true),
		cluster.WithSeed(3),
		cluster.WithPrintMode(cluster.PrintNone),
	)
	require.NoError(t, err)

	require.Len(t, res.RawLoads, 4)
	var total float64
	for j, load := range res.RawLoads {
		assert.GreaterOrEqual(t, load, low-1e-6, "cluster %d", j)
		assert.LessOrEqual(t, load, high+1e-6, "cluster %d", j)
		total += load
	}
	assert.InDelta(t, sum, total, 1e-6)

	assert.False(t, math.IsNaN(res.Objective) || math.IsInf(res.Objective, 0))
	assert.GreaterOrEqual(t, res.Objective, 0.0)
	assert.LessOrEqual(t, res.Objective, res.Objectives[0], "best-of-N never loses to restart 1")

	assert.Equal(t, 20.0, res.Scaling.Capacity)
	for _, r := range res.Ranges {
		assert.InDelta(t, low/20, r.Low, 1e-12)
		assert.InDelta(t, high/20, r.High, 1e-12)
	}
	for i, a := range res.Assignment {
		assert.GreaterOrEqual(t, a, 0, "point %d", i)
	}
	assert.Len(t, res.Centers, 4)
}

func TestRun_Reproducible(t *testing.T) {
	coords, w := grid()
	run := func(workers int) *cluster.Result {
		res, err := cluster.Run(context.Background(), coords, w, 4,
			cluster.WithRestarts(6),
			cluster.WithRange(40, 200),
			cluster.WithCenterInit(solver.InitKMeansPP),
			cluster.WithSeed(1234),
			cluster.WithWorkers(workers),
			cluster.WithPrintMode(cluster.PrintNone),
		)
		require.NoError(t, err)
		return res
	}

	a, b, par := run(1), run(1), run(3)
	ignore := cmpopts.IgnoreFields(cluster.Result{}, "Elapsed", "Failures")
	assert.Len(t, b.Failures, len(a.Failures))
	assert.Len(t, par.Failures, len(a.Failures))

	assert.Empty(t, cmp.Diff(a, b, ignore, cmpopts.EquateNaNs()))
	assert.Empty(t, cmp.Diff(a, par, ignore, cmpopts.EquateNaNs()), "parallel and sequential runs agree")
}

func TestRun_ReportsEveryRestart(t *testing.T) {
	for _, workers := range []int{1, 3} {
		var events []cluster.Event
		fake := &scripted{objs: []float64{4, 2, 3}, fail: map[int]bool{3: true}}
		_, err := runScripted(t, fake, workers,
			cluster.WithReporter(cluster.ReporterFunc(func(e cluster.Event) { events = append(events, e) })))
		require.NoError(t, err)

		require.Len(t, events, 3)
		var restarts []int
		for n, e := range events {
			assert.Equal(t, n+1, e.Completed)
			assert.Equal(t, 3, e.Total)
			restarts = append(restarts, e.Restart)
			if e.Restart == 3 {
				assert.ErrorIs(t, e.Err, errScripted)
				assert.True(t, math.IsNaN(e.Objective))
			}
		}
		sort.Ints(restarts)
		assert.Equal(t, []int{1, 2, 3}, restarts)
	}
}

func TestRun_StepsOutput(t *testing.T) {
	var buf bytes.Buffer
	fake := &scripted{objs: []float64{0.5, 0.25}}
	_, err := runScripted(t, fake, 1,
		cluster.WithPrintMode(cluster.PrintSteps),
		cluster.WithOutput(&buf),
	)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "restart 1/2 done in")
	assert.Contains(t, string(lines[1]), "objective 0.25")
}

func TestRun_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fake := &scripted{objs: []float64{1, 2}, fail: map[int]bool{2: true}}

	_, err := runScripted(t, fake, 1, cluster.WithLogger(zap.New(core)))
	require.NoError(t, err)

	warns := logs.FilterMessage("restart discarded").All()
	require.Len(t, warns, 1)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
	assert.EqualValues(t, 2, warns[0].ContextMap()["restart"])

	done := logs.FilterMessage("clustering finished").All()
	require.Len(t, done, 1)
	assert.EqualValues(t, 1, done[0].ContextMap()["best_restart"])
}

func TestRestartError(t *testing.T) {
	err := error(&cluster.RestartError{Restart: 4, Err: solver.ErrInfeasible})
	assert.Equal(t, "cluster: restart 4: solver: capacity ranges cannot be satisfied", err.Error())
	assert.True(t, errors.Is(err, solver.ErrInfeasible))
	assert.True(t, errors.Is(err, cluster.ErrSolverFailure))
}
