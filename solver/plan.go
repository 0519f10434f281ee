package solver

import "math"

// shareTol is the threshold below which an LP share is treated as zero.
const shareTol = 1e-9

// plan is an assignment: x[i][j] is point i's share of cluster j and out[i]
// its outgroup share (out is nil when the outgroup is disabled). Hard plans
// hold only 0/1 values.
type plan struct {
	x   [][]float64
	out []float64
}

func newPlan(n, k int, outgroup bool) *plan {
	pl := &plan{x: make([][]float64, n)}
	for i := range pl.x {
		pl.x[i] = make([]float64, k)
	}
	if outgroup {
		pl.out = make([]float64, n)
	}

	return pl
}

func (pl *plan) clone() *plan {
	out := &plan{x: make([][]float64, len(pl.x))}
	for i := range pl.x {
		out.x[i] = append([]float64(nil), pl.x[i]...)
	}
	if pl.out != nil {
		out.out = append([]float64(nil), pl.out...)
	}

	return out
}

// members lists the points with a positive share of cluster j.
func (pl *plan) members(j int) []int {
	var idx []int
	for i := range pl.x {
		if pl.x[i][j] > 0 {
			idx = append(idx, i)
		}
	}

	return idx
}

// objective is Σ xᵢⱼ·cᵢⱼ + Σ outᵢ·gᵢ.
func (pl *plan) objective(p *Problem, c [][]float64) float64 {
	var s float64
	for i := range pl.x {
		for j, v := range pl.x[i] {
			if v != 0 {
				s += v * c[i][j]
			}
		}
		if pl.out != nil && pl.out[i] != 0 {
			s += pl.out[i] * p.outgroupCost(i)
		}
	}

	return s
}

// loads returns Σᵢ cwᵢ·xᵢⱼ per cluster.
func (pl *plan) loads(p *Problem) []float64 {
	l := make([]float64, p.K)
	for i := range pl.x {
		for j, v := range pl.x[i] {
			l[j] += v * p.CapacityWeights[i]
		}
	}

	return l
}

// labels returns, per point, the cluster with the largest share, or -1 when
// the outgroup share dominates (or the point has no share at all).
func (pl *plan) labels() []int {
	lab := make([]int, len(pl.x))
	for i := range pl.x {
		best, bestV := -1, 0.0
		for j, v := range pl.x[i] {
			if v > bestV+shareTol {
				best, bestV = j, v
			}
		}
		if pl.out != nil && pl.out[i] >= bestV && pl.out[i] > 0 {
			best = -1
		}
		lab[i] = best
	}

	return lab
}

// round1e9 stabilises objective values across platforms.
func round1e9(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}

	return math.Round(x*1e9) / 1e9
}
