package distmat

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/metric"
)

// symTol is the absolute tolerance for symmetry checks of supplied matrices.
const symTol = 1e-9

var (
	// ErrEmpty is returned when no points are given.
	ErrEmpty = errors.New("distmat: no points")

	// ErrNilMetric is returned when Build receives a nil metric.
	ErrNilMetric = errors.New("distmat: nil metric")

	// ErrNilMatrix is returned when Validate receives a nil matrix.
	ErrNilMatrix = errors.New("distmat: nil matrix")

	// ErrOrder signals a matrix whose order differs from the point count,
	// or a non-square matrix.
	ErrOrder = errors.New("distmat: matrix order does not match point count")

	// ErrNegative signals a negative distance.
	ErrNegative = errors.New("distmat: negative distance")

	// ErrNaNInf signals a NaN or ±Inf distance.
	ErrNaNInf = errors.New("distmat: NaN or Inf distance")

	// ErrAsymmetry signals |d(i,j) − d(j,i)| above tolerance.
	ErrAsymmetry = errors.New("distmat: matrix is not symmetric")
)

// Build evaluates fn for every pair i ≤ j of coords and returns the symmetric
// n×n matrix. workers ≤ 1 builds sequentially; otherwise rows are distributed
// over at most workers goroutines. Every produced entry must be finite and
// non-negative.
func Build(coords [][]float64, fn metric.Func, workers int) (*mat.SymDense, error) {
	var n = len(coords)
	if n == 0 {
		return nil, ErrEmpty
	}
	if fn == nil {
		return nil, ErrNilMetric
	}

	// Each row owns the disjoint slice data[i*n+i : i*n+n], so concurrent
	// writers never touch the same cell.
	data := make([]float64, n*n)
	fillRow := func(i int) error {
		var (
			j int
			v float64
		)
		for j = i; j < n; j++ {
			v = fn(coords[i], coords[j])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w at (%d,%d)", ErrNaNInf, i, j)
			}
			if v < 0 {
				return fmt.Errorf("%w at (%d,%d)", ErrNegative, i, j)
			}
			data[i*n+j] = v
		}

		return nil
	}

	var i int
	if workers <= 1 {
		for i = 0; i < n; i++ {
			if err := fillRow(i); err != nil {
				return nil, err
			}
		}

		return mat.NewSymDense(n, data), nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i = 0; i < n; i++ {
		row := i
		g.Go(func() error { return fillRow(row) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mat.NewSymDense(n, data), nil
}

// Validate checks a caller-supplied matrix against n points and returns it as
// a *mat.SymDense. The input is never modified; a copy is returned unless the
// input already is a *mat.SymDense.
//
// Checks, in order: non-nil, square of order n, finite, non-negative,
// symmetric within symTol.
func Validate(m mat.Matrix, n int) (*mat.SymDense, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	r, c := m.Dims()
	if r != c || r != n {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrOrder, r, c, n, n)
	}

	var (
		i, j     int
		aij, aji float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			aij = m.At(i, j)
			if math.IsNaN(aij) || math.IsInf(aij, 0) {
				return nil, fmt.Errorf("%w at (%d,%d)", ErrNaNInf, i, j)
			}
			if aij < 0 {
				return nil, fmt.Errorf("%w at (%d,%d)", ErrNegative, i, j)
			}
		}
	}

	if sym, ok := m.(*mat.SymDense); ok {
		return sym, nil
	}

	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			aij, aji = m.At(i, j), m.At(j, i)
			if math.Abs(aij-aji) > symTol {
				return nil, fmt.Errorf("%w at (%d,%d)", ErrAsymmetry, i, j)
			}
		}
	}

	out := mat.NewSymDense(n, nil)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			out.SetSym(i, j, m.At(i, j))
		}
	}

	return out, nil
}
