// Package normalize rescales distances, weights and capacity ranges onto a
// common magnitude so the assignment subproblem is numerically stable for
// datasets of arbitrary units.
//
// Rules (applied only when enabled):
//   - distance matrix: every entry is divided by the global maximum;
//   - capacity weights and every capacity bound: divided by the maximum
//     capacity weight, preserving the ratio between a point's contribution
//     and the cluster bounds;
//   - demand weights: divided by the maximum demand weight.
//
// Scaling is relative to the maxima of the current call, not to any persisted
// reference. Inputs are never modified; all outputs are fresh values.
package normalize

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyWeights is returned when a weight family is empty.
	ErrEmptyWeights = errors.New("normalize: empty weights")

	// ErrZeroMax is returned when a weight family has a non-positive maximum,
	// which would make the rescaling undefined.
	ErrZeroMax = errors.New("normalize: maximum weight must be positive")
)

// Scaling records the divisors applied to each family (1 when disabled).
type Scaling struct {
	Distance float64 `json:"distance" yaml:"distance"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

// Identity is the Scaling of a pass-through normalisation.
var Identity = Scaling{Distance: 1, Capacity: 1, Weight: 1}

// Input carries the three numeric families. Dist may be nil.
type Input struct {
	Dist            *mat.SymDense
	Weights         []float64
	CapacityWeights []float64
	Ranges          [][2]float64
}

// Output is the rescaled counterpart of Input.
type Output struct {
	Dist            *mat.SymDense
	Weights         []float64
	CapacityWeights []float64
	Ranges          [][2]float64
	Scaling         Scaling
}

// Apply rescales in when enabled is true and copies it through otherwise.
//
// Postconditions when enabled:
//   - max(Dist) == 1 (unless every distance is 0, then Dist is copied as-is);
//   - max(CapacityWeights) == 1 and every range bound is divided by the same factor;
//   - max(Weights) == 1.
func Apply(in Input, enabled bool) (Output, error) {
	if len(in.Weights) == 0 || len(in.CapacityWeights) == 0 {
		return Output{}, ErrEmptyWeights
	}

	out := Output{
		Weights:         append([]float64(nil), in.Weights...),
		CapacityWeights: append([]float64(nil), in.CapacityWeights...),
		Ranges:          append([][2]float64(nil), in.Ranges...),
		Scaling:         Identity,
	}
	if in.Dist != nil {
		out.Dist = mat.NewSymDense(in.Dist.SymmetricDim(), nil)
		out.Dist.CopySym(in.Dist)
	}
	if !enabled {
		return out, nil
	}

	wMax := floats.Max(out.Weights)
	cMax := floats.Max(out.CapacityWeights)
	if wMax <= 0 || cMax <= 0 {
		return Output{}, ErrZeroMax
	}

	floats.Scale(1/wMax, out.Weights)
	floats.Scale(1/cMax, out.CapacityWeights)
	for i := range out.Ranges {
		out.Ranges[i][0] /= cMax
		out.Ranges[i][1] /= cMax
	}
	out.Scaling.Weight = wMax
	out.Scaling.Capacity = cMax

	if out.Dist != nil {
		if dMax := mat.Max(out.Dist); dMax > 0 {
			out.Dist.ScaleSym(1/dMax, out.Dist)
			out.Scaling.Distance = dMax
		}
	}

	return out, nil
}

// Restore converts capacity loads expressed in normalised units back to raw
// capacity-weight units.
func (s Scaling) Restore(loads []float64) []float64 {
	raw := append([]float64(nil), loads...)
	floats.Scale(s.Capacity, raw)

	return raw
}
