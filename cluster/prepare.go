package cluster

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/distmat"
	"github.com/katalvlaran/capclust/normalize"
	"github.com/katalvlaran/capclust/solver"
)

// prepared is the shared, read-only state of a run.
type prepared struct {
	problem *solver.Problem
	scaling normalize.Scaling
}

// Prepare validates the inputs and builds the solver.Problem every restart of
// a Run with the same arguments would share: distance matrix (when heads are
// restricted to input points), normalised weights and ranges. Run-only
// options (restarts, reporter, workers) are validated but otherwise ignored.
//
// Combined with RestartSeed it replays a single restart outside of Run.
func Prepare(coords [][]float64, weights []float64, k int, opts ...Option) (*solver.Problem, error) {
	cfg := resolve(weights, k, opts)
	if err := cfg.validate(coords, weights, k); err != nil {
		return nil, err
	}
	pr, err := prepare(cfg, coords, weights, k)
	if err != nil {
		return nil, err
	}

	return pr.problem, nil
}

// prepare runs the O(n²) stages on validated input.
//
// Steps:
//  1. distance matrix: reuse and check the supplied one, or build one, only
//     when heads are restricted to input points;
//  2. normalisation into fresh slices and a fresh matrix;
//  3. deep copies of coordinates and fixed centers, so restarts never share
//     memory with the caller.
func prepare(cfg *config, coords [][]float64, weights []float64, k int) (*prepared, error) {
	var (
		dist *mat.SymDense
		err  error
	)
	if cfg.PlaceToPoint {
		if cfg.Dist != nil {
			dist, err = distmat.Validate(cfg.Dist, len(coords))
			if err != nil {
				return nil, invalid("dist", "%v", err)
			}
		} else {
			dist, err = distmat.Build(coords, cfg.Metric, cfg.Workers)
			if err != nil {
				return nil, distanceError(err)
			}
		}
	}

	norm, err := normalize.Apply(normalize.Input{
		Dist:            dist,
		Weights:         weights,
		CapacityWeights: cfg.CapacityWeights,
		Ranges:          cfg.Ranges,
	}, cfg.Normalization)
	if err != nil {
		return nil, fmt.Errorf("cluster: normalisation: %w", err)
	}

	ranges := make([]solver.Range, k)
	for j := range ranges {
		ranges[j] = solver.Range{Low: norm.Ranges[j][0], High: norm.Ranges[j][1]}
	}

	p := &solver.Problem{
		Coords:          copyRows(coords),
		Weights:         norm.Weights,
		CapacityWeights: norm.CapacityWeights,
		K:               k,
		Ranges:          ranges,
		Dist:            norm.Dist,
		DistScale:       norm.Scaling.Distance,
		Metric:          cfg.Metric,
		CenterInit:      cfg.CenterInit,
		PlaceToPoint:    cfg.PlaceToPoint,
		Fractional:      cfg.Fractional,
		FixedCenters:    copyRows(cfg.FixedCenters),
		Multiplicity:    append([]int(nil), cfg.Multiplicity...),
		Lambda:          cfg.Lambda,
		LambdaFixed:     cfg.LambdaFixed,
		Params:          cfg.Params,
	}
	return &prepared{problem: p, scaling: norm.Scaling}, nil
}

// distanceError maps metric output the matrix builder rejects to a
// ValidationError; anything else passes through.
func distanceError(err error) error {
	if errors.Is(err, distmat.ErrNegative) || errors.Is(err, distmat.ErrNaNInf) {
		return invalid("metric", "%v", err)
	}

	return fmt.Errorf("cluster: distance matrix: %w", err)
}

func copyRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}

	return out
}
