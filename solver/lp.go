package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// solveLP solves the capacitated assignment relaxation in standard form.
//
// Column layout:
//
//	[ xᵢⱼ (n·k) | oᵢ (n, outgroup only) | high slacks | low surpluses | upper-bound slacks ]
//
// Rows:
//   - Σⱼ xᵢⱼ + oᵢ = mᵢ                (one per point)
//   - Σᵢ cwᵢ·xᵢⱼ + sⱼ = highⱼ          (only when highⱼ can bind)
//   - Σᵢ cwᵢ·xᵢⱼ − tⱼ = lowⱼ           (only when lowⱼ > 0)
//   - xᵢⱼ + uᵢⱼ = 1                    (only for points with mᵢ > 1)
//
// Every row owns a slack or a disjoint block of x columns, so A has full row
// rank and no zero rows or columns, as gonum's simplex requires.
func solveLP(p *Problem, prm Params, c [][]float64) (*plan, error) {
	n, k := p.n(), p.K
	og := p.outgroupEnabled()
	capTotal := p.totalCapacity()

	var hi, lo, multi []int
	var i, j int
	for j = 0; j < k; j++ {
		if p.Ranges[j].High < capTotal {
			hi = append(hi, j)
		}
		if p.Ranges[j].Low > 0 {
			lo = append(lo, j)
		}
	}
	for i = 0; i < n; i++ {
		if p.mult(i) > 1 {
			multi = append(multi, i)
		}
	}

	nx := n * k
	ogCol := nx
	slack := nx
	if og {
		slack += n
	}
	rows := n + len(hi) + len(lo) + len(multi)*k
	cols := slack + len(hi) + len(lo) + len(multi)*k

	A := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	cost := make([]float64, cols)

	for i = 0; i < n; i++ {
		for j = 0; j < k; j++ {
			A.Set(i, i*k+j, 1)
			cost[i*k+j] = c[i][j]
		}
		if og {
			A.Set(i, ogCol+i, 1)
			cost[ogCol+i] = p.outgroupCost(i)
		}
		b[i] = float64(p.mult(i))
	}

	r, s := n, slack
	for _, j = range hi {
		for i = 0; i < n; i++ {
			if cw := p.CapacityWeights[i]; cw != 0 {
				A.Set(r, i*k+j, cw)
			}
		}
		A.Set(r, s, 1)
		b[r] = p.Ranges[j].High
		r, s = r+1, s+1
	}
	for _, j = range lo {
		for i = 0; i < n; i++ {
			if cw := p.CapacityWeights[i]; cw != 0 {
				A.Set(r, i*k+j, cw)
			}
		}
		A.Set(r, s, -1)
		b[r] = p.Ranges[j].Low
		r, s = r+1, s+1
	}
	for _, i = range multi {
		for j = 0; j < k; j++ {
			A.Set(r, i*k+j, 1)
			A.Set(r, s, 1)
			b[r] = 1
			r, s = r+1, s+1
		}
	}

	_, x, err := lp.Simplex(cost, A, b, prm.LPTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, ErrInfeasible
		}

		return nil, fmt.Errorf("%w: %v", ErrLP, err)
	}

	pl := newPlan(n, k, og)
	for i = 0; i < n; i++ {
		for j = 0; j < k; j++ {
			pl.x[i][j] = clampShare(x[i*k+j])
		}
		if og {
			pl.out[i] = clampShare(x[ogCol+i])
		}
	}

	return pl, nil
}

// clampShare snaps simplex round-off to the [0, 1] box.
func clampShare(v float64) float64 {
	switch {
	case v < shareTol:
		return 0
	case v > 1-shareTol:
		return 1
	default:
		return v
	}
}

// roundPlan turns a fractional plan into a hard one: every point keeps its
// mᵢ largest shares (the outgroup competes only when mᵢ == 1).
// The result may violate the capacity ranges; callers repair it.
func roundPlan(p *Problem, frac *plan) *plan {
	n, k := p.n(), p.K
	pl := newPlan(n, k, frac.out != nil)

	var i, j, u int
	for i = 0; i < n; i++ {
		m := p.mult(i)
		if m == 1 && frac.out != nil {
			best, bestV := -1, frac.out[i]
			for j = 0; j < k; j++ {
				if frac.x[i][j] > bestV {
					best, bestV = j, frac.x[i][j]
				}
			}
			if best < 0 {
				pl.out[i] = 1
			} else {
				pl.x[i][best] = 1
			}
			continue
		}
		for u = 0; u < m; u++ {
			best, bestV := -1, -1.0
			for j = 0; j < k; j++ {
				if pl.x[i][j] == 0 && frac.x[i][j] > bestV {
					best, bestV = j, frac.x[i][j]
				}
			}
			pl.x[i][best] = 1
		}
	}

	return pl
}
