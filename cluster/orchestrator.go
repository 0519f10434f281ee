package cluster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/capclust/solver"
)

// outcome is what one restart produced.
type outcome struct {
	res     *solver.Result
	err     error
	elapsed time.Duration
}

// Run validates the inputs, prepares the shared problem and runs the solver
// for every restart, returning the lowest-objective clustering.
//
// Errors:
//   - *ValidationError (ErrValidation / ErrConfiguration) before any distance
//     computation;
//   - ctx.Err() when the context ends before every restart was dispatched;
//     dispatched restarts are always allowed to finish;
//   - ErrNoFeasibleRestart joined with every *RestartError when no restart
//     succeeded.
//
// Complexity: one O(n²) matrix build (when needed) plus N solver passes,
// spread over Workers goroutines.
func Run(ctx context.Context, coords [][]float64, weights []float64, k int, opts ...Option) (*Result, error) {
	start := time.Now()
	cfg := resolve(weights, k, opts)
	if err := cfg.validate(coords, weights, k); err != nil {
		return nil, err
	}
	log := cfg.Logger.With(
		zap.Int("points", len(coords)),
		zap.Int("k", k),
		zap.Int("restarts", cfg.Restarts),
		zap.Int64("seed", cfg.Seed),
	)

	pr, err := prepare(cfg, coords, weights, k)
	if err != nil {
		return nil, err
	}
	log.Debug("problem prepared",
		zap.Bool("distance_matrix", pr.problem.Dist != nil),
		zap.Bool("normalized", cfg.Normalization),
		zap.Duration("elapsed", time.Since(start)),
	)

	o := &orchestrator{cfg: cfg, problem: pr.problem, log: log}
	var outs []outcome
	if cfg.Workers > 1 {
		outs, err = o.parallel(ctx)
	} else {
		outs, err = o.sequential(ctx)
	}
	if err != nil {
		log.Warn("run interrupted", zap.Error(err))
		return nil, err
	}

	var (
		sel  selector
		res  = &Result{Objectives: make([]float64, len(outs)), Scaling: pr.scaling}
		errs []error
	)
	for idx, out := range outs {
		if out.err != nil {
			res.Objectives[idx] = math.NaN()
			errs = append(errs, out.err)
			continue
		}
		res.Objectives[idx] = out.res.Objective
		sel.offer(idx+1, out.res)
	}
	res.Failures = errs
	res.Elapsed = time.Since(start)

	best := math.NaN()
	if sel.best != nil {
		best = sel.best.Objective
	}
	cfg.Metrics.ObserveRun(len(outs), len(errs), best, res.Elapsed)

	if sel.best == nil {
		log.Error("no feasible restart", zap.Int("failures", len(errs)))
		return nil, errors.Join(append([]error{ErrNoFeasibleRestart}, errs...)...)
	}

	res.Result = *sel.best
	res.Restart = sel.restart
	res.Ranges = append([]solver.Range(nil), pr.problem.Ranges...)
	res.RawLoads = pr.scaling.Restore(sel.best.Loads)
	log.Info("clustering finished",
		zap.Int("best_restart", res.Restart),
		zap.Float64("objective", res.Objective),
		zap.Int("failures", len(errs)),
		zap.Duration("elapsed", res.Elapsed),
	)

	return res, nil
}

type orchestrator struct {
	cfg     *config
	problem *solver.Problem
	log     *zap.Logger
}

// solve runs restart i (1-based). A nil result or a NaN/Inf objective fails
// the restart.
func (o *orchestrator) solve(i int) outcome {
	t0 := time.Now()
	res, err := o.cfg.Solver.Solve(o.problem, solver.Start{Index: i, Seed: RestartSeed(o.cfg.Seed, i)})
	out := outcome{res: res, elapsed: time.Since(t0)}
	switch {
	case err != nil:
		out.res, out.err = nil, &RestartError{Restart: i, Err: err}
	case res == nil:
		out.err = &RestartError{Restart: i, Err: errNilResult}
	case math.IsNaN(res.Objective) || math.IsInf(res.Objective, 0):
		out.res, out.err = nil, &RestartError{Restart: i, Err: fmt.Errorf("%w: %v", errNonFiniteObjective, res.Objective)}
	}

	return out
}

// record reports, logs and measures one finished restart. Callers serialise it.
func (o *orchestrator) record(i, completed int, out outcome) {
	ev := Event{
		Restart:   i,
		Total:     o.cfg.Restarts,
		Completed: completed,
		Objective: math.NaN(),
		Elapsed:   out.elapsed,
		Err:       out.err,
	}
	if out.res != nil {
		ev.Objective = out.res.Objective
	}
	o.cfg.Reporter.Report(ev)
	o.cfg.Metrics.ObserveRestart(i, out.elapsed, ev.Objective, out.err)

	if out.err != nil {
		o.log.Warn("restart discarded", zap.Int("restart", i), zap.Error(out.err))
		return
	}
	o.log.Debug("restart finished",
		zap.Int("restart", i),
		zap.Float64("objective", ev.Objective),
		zap.Int("iterations", out.res.Iterations),
		zap.Duration("elapsed", out.elapsed),
	)
}

// sequential runs the restarts one after another on the calling goroutine.
func (o *orchestrator) sequential(ctx context.Context) ([]outcome, error) {
	outs := make([]outcome, o.cfg.Restarts)
	for i := 1; i <= o.cfg.Restarts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outs[i-1] = o.solve(i)
		o.record(i, i, outs[i-1])
	}

	return outs, nil
}

// parallel fans the restarts out to at most Workers goroutines. Each worker
// writes only its own slot; finished indices travel over a channel to a single
// goroutine that owns reporting, so progress output never interleaves.
func (o *orchestrator) parallel(ctx context.Context) ([]outcome, error) {
	n := o.cfg.Restarts
	outs := make([]outcome, n)
	done := make(chan int, n)
	reported := make(chan struct{})

	go func() {
		defer close(reported)
		completed := 0
		for idx := range done {
			completed++
			o.record(idx+1, completed, outs[idx])
		}
	}()

	var (
		g           errgroup.Group
		dispatchErr error
	)
	g.SetLimit(o.cfg.Workers)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}
		i := i
		g.Go(func() error {
			outs[i-1] = o.solve(i)
			done <- i - 1
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	<-reported

	if dispatchErr != nil {
		return nil, dispatchErr
	}

	return outs, nil
}
