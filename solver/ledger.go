package solver

import "math"

// gainTol is the minimum change treated as an improvement.
const gainTol = 1e-12

// outSlot denotes the outgroup in slot arguments; clusters are 0..k-1.
const outSlot = -1

// ledger tracks a hard plan together with its cluster loads so that single
// moves and pairwise swaps can be evaluated in O(1).
type ledger struct {
	p     *Problem
	c     [][]float64
	pl    *plan
	loads []float64
	slots []int // outSlot (when enabled) followed by 0..k-1
}

func newLedger(p *Problem, c [][]float64, pl *plan) *ledger {
	l := &ledger{p: p, c: c, pl: pl, loads: pl.loads(p)}
	if pl.out != nil {
		l.slots = append(l.slots, outSlot)
	}
	for j := 0; j < p.K; j++ {
		l.slots = append(l.slots, j)
	}

	return l
}

// excess is the amount by which load leaves cluster j's range.
func (l *ledger) excess(j int, load float64) float64 {
	r := l.p.Ranges[j]
	tol := capTol(r)
	switch {
	case load > r.High+tol:
		return load - r.High
	case load < r.Low-tol:
		return r.Low - load
	default:
		return 0
	}
}

func (l *ledger) violation() float64 {
	var v float64
	for j, load := range l.loads {
		v += l.excess(j, load)
	}

	return v
}

func (l *ledger) holds(i, s int) bool {
	if s == outSlot {
		return l.pl.out[i] > 0.5
	}

	return l.pl.x[i][s] > 0.5
}

// accepts reports whether point i may occupy slot s at all.
func (l *ledger) accepts(i, s int) bool {
	return s != outSlot || l.p.mult(i) == 1
}

func (l *ledger) unitCost(i, s int) float64 {
	if s == outSlot {
		return l.p.outgroupCost(i)
	}

	return l.c[i][s]
}

// shift returns the change in violation when cluster s's load moves by delta.
func (l *ledger) shift(s int, delta float64) float64 {
	if s == outSlot || delta == 0 {
		return 0
	}

	return l.excess(s, l.loads[s]+delta) - l.excess(s, l.loads[s])
}

// moveEffect evaluates moving point i from slot a to slot b.
func (l *ledger) moveEffect(i, a, b int) (dv, dc float64) {
	cw := l.p.CapacityWeights[i]
	dv = l.shift(a, -cw) + l.shift(b, cw)
	dc = l.unitCost(i, b) - l.unitCost(i, a)

	return dv, dc
}

// swapEffect evaluates exchanging point i (in a) with point h (in b).
func (l *ledger) swapEffect(i, a, h, b int) (dv, dc float64) {
	d := l.p.CapacityWeights[h] - l.p.CapacityWeights[i]
	if a != b {
		dv = l.shift(a, d) + l.shift(b, -d)
	}
	dc = l.unitCost(i, b) - l.unitCost(i, a) + l.unitCost(h, a) - l.unitCost(h, b)

	return dv, dc
}

func (l *ledger) set(i, s int, v float64) {
	if s == outSlot {
		l.pl.out[i] = v
		return
	}
	l.pl.x[i][s] = v
	l.loads[s] += (2*v - 1) * l.p.CapacityWeights[i]
}

func (l *ledger) move(i, a, b int) {
	l.set(i, a, 0)
	l.set(i, b, 1)
}

func (l *ledger) swap(i, a, h, b int) {
	l.move(i, a, b)
	l.move(h, b, a)
}

// canMove reports whether i currently sits in a and may move to b.
func (l *ledger) canMove(i, a, b int) bool {
	return a != b && l.holds(i, a) && !l.holds(i, b) && l.accepts(i, b)
}

// better orders candidate changes: larger violation drop first, then lower cost.
func better(dv, dc, bestDv, bestDc float64) bool {
	if dv < bestDv-gainTol {
		return true
	}

	return math.Abs(dv-bestDv) <= gainTol && dc < bestDc-gainTol
}

// repair drives the total range violation to zero with best-improvement
// moves, falling back to swaps when no single move reduces the violation.
// It fails with ErrInfeasible when neither does.
//
// Complexity: O(steps · (n·|slots|² + n²·|slots|²)) worst case.
func (l *ledger) repair() error {
	n := l.p.n()
	maxSteps := 4*n*len(l.slots) + 16

	var step, i, h int
	for step = 0; step < maxSteps; step++ {
		if l.violation() == 0 {
			return nil
		}

		var (
			found          bool
			bi, ba, bb     int
			bestDv, bestDc = -gainTol, math.Inf(1)
		)
		for i = 0; i < n; i++ {
			for _, a := range l.slots {
				for _, b := range l.slots {
					if !l.canMove(i, a, b) {
						continue
					}
					dv, dc := l.moveEffect(i, a, b)
					if dv < -gainTol && better(dv, dc, bestDv, bestDc) {
						found, bi, ba, bb, bestDv, bestDc = true, i, a, b, dv, dc
					}
				}
			}
		}
		if found {
			l.move(bi, ba, bb)
			continue
		}

		var bh int
		bestDv, bestDc = -gainTol, math.Inf(1)
		for i = 0; i < n; i++ {
			for h = i + 1; h < n; h++ {
				for _, a := range l.slots {
					for _, b := range l.slots {
						if !l.canMove(i, a, b) || !l.canMove(h, b, a) {
							continue
						}
						dv, dc := l.swapEffect(i, a, h, b)
						if dv < -gainTol && better(dv, dc, bestDv, bestDc) {
							found, bi, ba, bh, bb, bestDv, bestDc = true, i, a, h, b, dv, dc
						}
					}
				}
			}
		}
		if !found {
			return ErrInfeasible
		}
		l.swap(bi, ba, bh, bb)
	}

	if l.violation() != 0 {
		return ErrInfeasible
	}

	return nil
}

// improve applies first-improvement moves and swaps that lower the cost
// without introducing a range violation, for at most passes sweeps.
func (l *ledger) improve(passes int) {
	n := l.p.n()
	var pass, i, h int
	for pass = 0; pass < passes; pass++ {
		improved := false
		for i = 0; i < n; i++ {
		moves:
			for _, a := range l.slots {
				for _, b := range l.slots {
					if !l.canMove(i, a, b) {
						continue
					}
					if dv, dc := l.moveEffect(i, a, b); dv <= gainTol && dc < -gainTol {
						l.move(i, a, b)
						improved = true
						break moves
					}
				}
			}
		}
		for i = 0; i < n; i++ {
			for h = i + 1; h < n; h++ {
			swaps:
				for _, a := range l.slots {
					for _, b := range l.slots {
						if !l.canMove(i, a, b) || !l.canMove(h, b, a) {
							continue
						}
						if dv, dc := l.swapEffect(i, a, h, b); dv <= gainTol && dc < -gainTol {
							l.swap(i, a, h, b)
							improved = true
							break swaps
						}
					}
				}
			}
		}
		if !improved {
			return
		}
	}
}
