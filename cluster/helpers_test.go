package cluster_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/katalvlaran/capclust/metric"
	"github.com/katalvlaran/capclust/solver"
)

// square returns four unit-weight points on the corners of a 10×10 square.
func square() ([][]float64, []float64) {
	return [][]float64{{0, 0}, {10, 0}, {0, 10}, {10, 10}}, []float64{1, 1, 1, 1}
}

// grid returns 20 points on a 5×4 grid with spacing 10, each of weight 20.
func grid() ([][]float64, []float64) {
	var coords [][]float64
	var w []float64
	for x := 0; x < 5; x++ {
		for y := 0; y < 4; y++ {
			coords = append(coords, []float64{float64(10 * x), float64(10 * y)})
			w = append(w, 20)
		}
	}

	return coords, w
}

// countingMetric wraps squared Euclidean distance and counts evaluations.
type countingMetric struct{ calls atomic.Int64 }

func (c *countingMetric) fn() metric.Func {
	return func(a, b []float64) float64 {
		c.calls.Add(1)
		return metric.SquaredEuclidean(a, b)
	}
}

var errScripted = errors.New("scripted failure")

// scripted is a solver whose restart i returns objs[i-1] (or fails when
// listed in fail) after sleeping delay[i]. Iterations carries the restart
// index so tests can tell which restart was selected.
type scripted struct {
	objs  []float64
	fail  map[int]bool
	delay map[int]time.Duration
	calls atomic.Int64

	mu    sync.Mutex
	seeds []int64
}

func (s *scripted) Solve(p *solver.Problem, st solver.Start) (*solver.Result, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.seeds = append(s.seeds, st.Seed)
	s.mu.Unlock()
	if d := s.delay[st.Index]; d > 0 {
		time.Sleep(d)
	}
	if s.fail[st.Index] {
		return nil, errScripted
	}

	return &solver.Result{
		Assignment: make([]int, len(p.Coords)),
		Loads:      make([]float64, p.K),
		Objective:  s.objs[st.Index-1],
		Iterations: st.Index,
	}, nil
}

// recorder collects metrics calls.
type recorder struct {
	restarts []int
	failed   int
	runs     int
	best     float64
	runFails int
}

func (r *recorder) ObserveRestart(restart int, _ time.Duration, _ float64, err error) {
	r.restarts = append(r.restarts, restart)
	if err != nil {
		r.failed++
	}
}

func (r *recorder) ObserveRun(_, failures int, best float64, _ time.Duration) {
	r.runs++
	r.runFails = failures
	r.best = best
}
