package solver

import (
	"math"
	"sort"
)

// greedyPlan assigns points in decreasing regret order (gap between the
// cheapest and second-cheapest option), each membership unit going to the
// cheapest cluster that still has room below its high bound. The outgroup is
// taken when it is cheaper than every cluster with room. Points that fit
// nowhere go to their cheapest cluster and are left for repair.
//
// Complexity: O(n·k·log k + n·log n).
func greedyPlan(p *Problem, c [][]float64) *plan {
	n, k := p.n(), p.K
	og := p.outgroupEnabled()
	pl := newPlan(n, k, og)

	ranked := make([][]int, n)
	regret := make([]float64, n)
	var i, j int
	for i = 0; i < n; i++ {
		row := c[i]
		idx := make([]int, k)
		for j = range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] < row[idx[b]] })
		ranked[i] = idx

		first, second := row[idx[0]], math.Inf(1)
		if k > 1 {
			second = row[idx[1]]
		}
		if og && p.mult(i) == 1 {
			g := p.outgroupCost(i)
			switch {
			case g < first:
				first, second = g, first
			case g < second:
				second = g
			}
		}
		if math.IsInf(second, 1) {
			second = first
		}
		regret[i] = second - first
	}

	order := make([]int, n)
	for i = range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return regret[order[a]] > regret[order[b]] })

	load := make([]float64, k)
	for _, i = range order {
		cw := p.CapacityWeights[i]
		m := p.mult(i)
		for u := 0; u < m; u++ {
			chosen := -1
			for _, j = range ranked[i] {
				r := p.Ranges[j]
				if pl.x[i][j] == 0 && load[j]+cw <= r.High+capTol(r) {
					chosen = j
					break
				}
			}
			if og && m == 1 && (chosen < 0 || p.outgroupCost(i) < c[i][chosen]) {
				pl.out[i] = 1
				break
			}
			if chosen < 0 {
				for _, j = range ranked[i] {
					if pl.x[i][j] == 0 {
						chosen = j
						break
					}
				}
			}
			pl.x[i][chosen] = 1
			load[chosen] += cw
		}
	}

	return pl
}
