package solver

import (
	"math"
	"math/rand"
)

// heads holds the current cluster-head locations. The first fixed entries
// are pinned for the whole pass.
type heads struct {
	pos   [][]float64 // k×d coordinates
	point []int       // input-point index per head, -1 when not a point
	fixed int
}

func (h *heads) clone() *heads {
	out := &heads{
		pos:   make([][]float64, len(h.pos)),
		point: append([]int(nil), h.point...),
		fixed: h.fixed,
	}
	for j := range h.pos {
		out.pos[j] = append([]float64(nil), h.pos[j]...)
	}

	return out
}

// dist is the distance between input point i and head j.
func (h *heads) dist(p *Problem, i, j int) float64 {
	if c := h.point[j]; c >= 0 {
		return p.pointDist(i, c)
	}

	return p.headDist(i, h.pos[j])
}

// costMatrix returns cᵢⱼ = wᵢ·d(i, head j).
//
// Complexity: O(n·k) distance lookups.
func costMatrix(p *Problem, h *heads) [][]float64 {
	n, k := p.n(), p.K
	c := make([][]float64, n)
	var i, j int
	for i = 0; i < n; i++ {
		c[i] = make([]float64, k)
		for j = 0; j < k; j++ {
			c[i][j] = p.Weights[i] * h.dist(p, i, j)
		}
	}

	return c
}

// initHeads pins the fixed centers and seeds the remaining heads on distinct
// input points according to p.CenterInit.
func initHeads(p *Problem, rng *rand.Rand) *heads {
	k := p.K
	h := &heads{
		pos:   make([][]float64, k),
		point: make([]int, k),
		fixed: len(p.FixedCenters),
	}
	var j int
	for j = 0; j < h.fixed; j++ {
		h.pos[j] = append([]float64(nil), p.FixedCenters[j]...)
		h.point[j] = -1
	}

	var picks []int
	switch p.CenterInit {
	case InitKMeansPP:
		picks = kmeansPP(p, h, rng)
	default:
		picks = rng.Perm(p.n())[:k-h.fixed]
	}
	for j = h.fixed; j < k; j++ {
		c := picks[j-h.fixed]
		h.pos[j] = append([]float64(nil), p.Coords[c]...)
		h.point[j] = c
	}

	return h
}

// kmeansPP draws k−fixed distinct points; each draw picks point i with
// probability ∝ wᵢ·D(i), D(i) being the distance to the nearest head chosen
// so far (fixed heads included). Draws fall back to uniform sampling over the
// remaining points when every score is zero.
//
// Complexity: O(n·k) distance evaluations.
func kmeansPP(p *Problem, h *heads, rng *rand.Rand) []int {
	n, need := p.n(), p.K-h.fixed
	picks := make([]int, 0, need)
	taken := make([]bool, n)
	near := make([]float64, n)

	var i, j int
	for i = 0; i < n; i++ {
		near[i] = math.Inf(1)
		for j = 0; j < h.fixed; j++ {
			near[i] = math.Min(near[i], h.dist(p, i, j))
		}
	}

	score := make([]float64, n)
	for len(picks) < need {
		var total float64
		for i = 0; i < n; i++ {
			score[i] = 0
			if taken[i] {
				continue
			}
			s := p.Weights[i]
			if !math.IsInf(near[i], 1) {
				s *= near[i]
			}
			score[i] = s
			total += s
		}

		c := -1
		if total > 0 {
			r := rng.Float64() * total
			for i = 0; i < n; i++ {
				if taken[i] || score[i] == 0 {
					continue
				}
				c = i
				if r < score[i] {
					break
				}
				r -= score[i]
			}
		}
		if c < 0 {
			free := make([]int, 0, n)
			for i = 0; i < n; i++ {
				if !taken[i] {
					free = append(free, i)
				}
			}
			c = free[rng.Intn(len(free))]
		}

		taken[c] = true
		picks = append(picks, c)
		for i = 0; i < n; i++ {
			near[i] = math.Min(near[i], p.pointDist(i, c))
		}
	}

	return picks
}

// relocate moves every non-fixed head for the assignment pl. A head never
// moves to a location with a higher cluster cost than its current one.
func relocate(p *Problem, h *heads, pl *plan) {
	var j int
	for j = h.fixed; j < p.K; j++ {
		if p.PlaceToPoint {
			relocateMedoid(p, h, pl, j)
		} else {
			relocateCentroid(p, h, pl, j)
		}
	}
}

// relocateMedoid moves head j to the input point minimising
// Σ wᵢ·xᵢⱼ·d(i, c) over candidates c not held by another head.
//
// Complexity: O(n·|members|).
func relocateMedoid(p *Problem, h *heads, pl *plan, j int) {
	members := pl.members(j)
	if len(members) == 0 {
		return
	}
	used := make(map[int]struct{}, p.K)
	for o, c := range h.point {
		if o != j && c >= 0 {
			used[c] = struct{}{}
		}
	}

	clusterCost := func(c int) float64 {
		var s float64
		for _, i := range members {
			s += p.Weights[i] * pl.x[i][j] * p.pointDist(i, c)
		}

		return s
	}

	var (
		best     = h.point[j]
		bestCost float64
	)
	if best >= 0 {
		bestCost = clusterCost(best)
	} else {
		for _, i := range members {
			bestCost += p.Weights[i] * pl.x[i][j] * h.dist(p, i, j)
		}
	}

	var c int
	for c = 0; c < p.n(); c++ {
		if _, ok := used[c]; ok || c == h.point[j] {
			continue
		}
		if v := clusterCost(c); v < bestCost-1e-12 {
			best, bestCost = c, v
		}
	}
	if best >= 0 && best != h.point[j] {
		h.point[j] = best
		h.pos[j] = append(h.pos[j][:0], p.Coords[best]...)
	}
}

// relocateCentroid moves head j to the (wᵢ·xᵢⱼ)-weighted mean of its members
// when that lowers the cluster cost.
func relocateCentroid(p *Problem, h *heads, pl *plan, j int) {
	members := pl.members(j)
	if len(members) == 0 {
		return
	}
	dim := len(p.Coords[members[0]])
	mean := make([]float64, dim)

	var (
		mass float64
		d    int
	)
	for _, i := range members {
		w := p.Weights[i] * pl.x[i][j]
		mass += w
		for d = 0; d < dim; d++ {
			mean[d] += w * p.Coords[i][d]
		}
	}
	if mass <= 0 {
		return
	}
	for d = 0; d < dim; d++ {
		mean[d] /= mass
	}

	var oldCost, newCost float64
	for _, i := range members {
		w := p.Weights[i] * pl.x[i][j]
		oldCost += w * h.dist(p, i, j)
		newCost += w * p.headDist(i, mean)
	}
	if newCost < oldCost-1e-12 {
		h.pos[j] = mean
		h.point[j] = -1
	}
}
