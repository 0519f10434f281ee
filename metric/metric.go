package metric

import (
	"errors"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrUnknownMetric is returned by ByName for names outside the registry.
var ErrUnknownMetric = errors.New("metric: unknown metric")

// Func maps two points to a non-negative scalar.
// Implementations must be pure and safe for concurrent use.
type Func func(a, b []float64) float64

// Registry names.
const (
	NameSquaredEuclidean = "sqeuclidean"
	NameEuclidean        = "euclidean"
	NameManhattan        = "manhattan"
	NameChebyshev        = "chebyshev"
)

// SquaredEuclidean returns Σ (aᵢ − bᵢ)².
func SquaredEuclidean(a, b []float64) float64 {
	var (
		s float64
		d float64
		i int
	)
	for i = range a {
		d = a[i] - b[i]
		s += d * d
	}

	return s
}

// Euclidean returns the L2 distance.
func Euclidean(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// Manhattan returns the L1 distance.
func Manhattan(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// Chebyshev returns the L∞ distance.
func Chebyshev(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// Default returns the metric used when none is configured.
func Default() Func { return SquaredEuclidean }

// ByName resolves a metric by its registry name (case-insensitive).
// The empty string resolves to Default.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameSquaredEuclidean, "squared_euclidean":
		return SquaredEuclidean, nil
	case NameEuclidean:
		return Euclidean, nil
	case NameManhattan:
		return Manhattan, nil
	case NameChebyshev:
		return Chebyshev, nil
	default:
		return nil, ErrUnknownMetric
	}
}
