package solver

import (
	"errors"
	"fmt"
	"math"
)

// Lloyd is the capacity-aware Lloyd solver. The zero value is ready to use.
type Lloyd struct{}

var _ Solver = Lloyd{}

// Solve runs one pass from the heads seeded by s.Seed and returns the best
// (assignment, heads) pair seen across iterations.
//
// Stages per iteration:
//  1. cost matrix for the current heads;
//  2. capacitated assignment (LP or greedy, then repair/improve for hard runs);
//  3. relocation of non-fixed heads;
//  4. objective of the assignment under the relocated heads.
//
// Iteration stops after Params.MaxIter rounds or when the objective improves
// by less than Params.Tol relative to the previous round.
func (Lloyd) Solve(p *Problem, s Start) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	prm := p.Params.withDefaults()
	rng := rngFromSeed(s.Seed)
	h := initHeads(p, rng)

	var (
		best  *plan
		bestH *heads
		bestObj = math.Inf(1)
		prev    = math.Inf(1)
		it      int
	)
	for it = 1; it <= prm.MaxIter; it++ {
		pl, err := assign(p, prm, costMatrix(p, h))
		if err != nil {
			return nil, err
		}
		relocate(p, h, pl)
		obj := pl.objective(p, costMatrix(p, h))

		if obj < bestObj {
			best, bestH, bestObj = pl, h.clone(), obj
		}
		if prev-obj <= prm.Tol*math.Max(1, math.Abs(prev)) {
			break
		}
		prev = obj
	}
	if it > prm.MaxIter {
		it = prm.MaxIter
	}
	if best == nil {
		return nil, fmt.Errorf("%w: objective is not finite", ErrBadProblem)
	}

	res := &Result{
		Assignment:   best.labels(),
		Centers:      bestH.pos,
		CenterPoints: bestH.point,
		Loads:        best.loads(p),
		Objective:    round1e9(bestObj),
		Iterations:   it,
	}
	if p.Fractional || p.multi() {
		res.Membership = best.clone().x
	}

	return res, nil
}

// assign produces the assignment for cost matrix c.
//
// Fractional runs return the LP optimum unchanged. Hard runs round the LP
// optimum (or start from the greedy plan), repair the capacity ranges and
// improve the result locally. Hard runs larger than prm.LPMaxVars skip
// the LP. A numeric LP failure in a hard run falls back
// to the greedy plan; LP infeasibility is final.
func assign(p *Problem, prm Params, c [][]float64) (*plan, error) {
	if p.Fractional {
		return solveLP(p, prm, c)
	}

	var pl *plan
	switch prm.methodFor(p.n() * p.K) {
	case MethodGreedy:
		pl = greedyPlan(p, c)
	default:
		frac, err := solveLP(p, prm, c)
		switch {
		case errors.Is(err, ErrInfeasible):
			return nil, err
		case err != nil:
			pl = greedyPlan(p, c)
		default:
			pl = roundPlan(p, frac)
		}
	}

	l := newLedger(p, c, pl)
	if err := l.repair(); err != nil {
		return nil, err
	}
	l.improve(prm.ImprovePasses)

	return pl, nil
}
