package solver

import (
	"fmt"
	"math"
)

// validate performs the structural checks a pass depends on. It is not a
// substitute for the orchestrator's input validation; it only guards against
// index panics when the solver is used directly.
//
// Complexity: O(n + k).
func (p *Problem) validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil problem", ErrBadProblem)
	}
	n := len(p.Coords)
	switch {
	case p.K < 1:
		return fmt.Errorf("%w: k=%d", ErrBadProblem, p.K)
	case n < p.K:
		return fmt.Errorf("%w: %d points for k=%d", ErrBadProblem, n, p.K)
	case len(p.Weights) != n || len(p.CapacityWeights) != n:
		return fmt.Errorf("%w: weight lengths do not match %d points", ErrBadProblem, n)
	case len(p.Ranges) != p.K:
		return fmt.Errorf("%w: %d ranges for k=%d", ErrBadProblem, len(p.Ranges), p.K)
	case p.Metric == nil:
		return fmt.Errorf("%w: nil metric", ErrBadProblem)
	case len(p.FixedCenters) > p.K:
		return fmt.Errorf("%w: %d fixed centers for k=%d", ErrBadProblem, len(p.FixedCenters), p.K)
	case p.Multiplicity != nil && len(p.Multiplicity) != n:
		return fmt.Errorf("%w: multiplicity length %d, want %d", ErrBadProblem, len(p.Multiplicity), n)
	}
	if p.Dist != nil && p.Dist.SymmetricDim() != n {
		return fmt.Errorf("%w: distance matrix order %d, want %d", ErrBadProblem, p.Dist.SymmetricDim(), n)
	}
	for i, m := range p.Multiplicity {
		if m < 1 || m > p.K {
			return fmt.Errorf("%w: multiplicity[%d]=%d", ErrBadProblem, i, m)
		}
	}

	return nil
}

func (p *Problem) n() int { return len(p.Coords) }

// mult returns the multiplicity of point i (1 when unset).
func (p *Problem) mult(i int) int {
	if p.Multiplicity == nil {
		return 1
	}

	return p.Multiplicity[i]
}

// multi reports whether any point may belong to more than one cluster.
func (p *Problem) multi() bool {
	for _, m := range p.Multiplicity {
		if m > 1 {
			return true
		}
	}

	return false
}

func (p *Problem) outgroupEnabled() bool { return p.Lambda != nil || p.LambdaFixed != nil }

// outgroupCost is λ·wᵢ + λ_fixed with absent terms contributing 0.
func (p *Problem) outgroupCost(i int) float64 {
	var g float64
	if p.Lambda != nil {
		g += *p.Lambda * p.Weights[i]
	}
	if p.LambdaFixed != nil {
		g += *p.LambdaFixed
	}

	return g
}

func (p *Problem) scale() float64 {
	if p.DistScale <= 0 || math.IsNaN(p.DistScale) || math.IsInf(p.DistScale, 0) {
		return 1
	}

	return p.DistScale
}

// pointDist is the distance between input points i and c.
func (p *Problem) pointDist(i, c int) float64 {
	if p.Dist != nil {
		return p.Dist.At(i, c)
	}

	return p.Metric(p.Coords[i], p.Coords[c]) / p.scale()
}

// headDist is the distance between input point i and an arbitrary location.
func (p *Problem) headDist(i int, pos []float64) float64 {
	return p.Metric(p.Coords[i], pos) / p.scale()
}

// totalCapacity is Σ cwᵢ·mᵢ, an upper bound on any cluster's load.
func (p *Problem) totalCapacity() float64 {
	var s float64
	for i, cw := range p.CapacityWeights {
		s += cw * float64(p.mult(i))
	}

	return s
}

// capTol is the absolute tolerance used when comparing a load to range r.
func capTol(r Range) float64 {
	return 1e-9 * math.Max(1, math.Max(math.Abs(r.Low), math.Abs(r.High)))
}
