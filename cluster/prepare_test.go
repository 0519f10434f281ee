package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/capclust/cluster"
	"github.com/katalvlaran/capclust/solver"
)

func TestPrepare_FreePlacementBuildsNoMatrix(t *testing.T) {
	coords, w := grid()
	var cm countingMetric

	p, err := cluster.Prepare(coords, w, 4,
		cluster.WithPlaceToPoint(false),
		cluster.WithMetric(cm.fn()),
	)
	require.NoError(t, err)

	assert.Nil(t, p.Dist)
	assert.Zero(t, cm.calls.Load())
	assert.False(t, p.PlaceToPoint)
	assert.Equal(t, 1.0, p.DistScale)
}

func TestPrepare_Normalization(t *testing.T) {
	coords, _ := square()
	w := []float64{1, 2, 3, 4}
	cw := []float64{2, 4, 8, 8}

	p, err := cluster.Prepare(coords, w, 2,
		cluster.WithCapacityWeights(cw),
		cluster.WithRange(4, 16),
	)
	require.NoError(t, err)

	require.NotNil(t, p.Dist)
	assert.InDelta(t, 1.0, mat.Max(p.Dist), 1e-12)
	assert.InDelta(t, 1.0, floats.Max(p.Weights), 1e-12)
	assert.InDelta(t, 1.0, floats.Max(p.CapacityWeights), 1e-12)
	assert.Equal(t, []solver.Range{{Low: 0.5, High: 2}, {Low: 0.5, High: 2}}, p.Ranges,
		"ranges are divided by the maximum capacity weight")
	assert.Equal(t, 200.0, p.DistScale, "largest squared distance of the square")

	assert.Equal(t, []float64{1, 2, 3, 4}, w, "weights untouched")
	assert.Equal(t, []float64{2, 4, 8, 8}, cw, "capacity weights untouched")
}

func TestPrepare_NormalizationOff(t *testing.T) {
	coords, _ := square()
	w := []float64{1, 2, 3, 4}

	p, err := cluster.Prepare(coords, w, 2,
		cluster.WithNormalization(false),
		cluster.WithRanges([][2]float64{{1, 5}, {2, 6}}),
	)
	require.NoError(t, err)

	assert.Equal(t, w, p.Weights)
	assert.Equal(t, w, p.CapacityWeights, "capacity weights default to weights")
	assert.Equal(t, []solver.Range{{Low: 1, High: 5}, {Low: 2, High: 6}}, p.Ranges)
	assert.Equal(t, 200.0, mat.Max(p.Dist))
	assert.Equal(t, 1.0, p.DistScale)
}

func TestPrepare_DefaultRange(t *testing.T) {
	coords, _ := square()
	w := []float64{1, 2, 3, 4}

	raw, err := cluster.Prepare(coords, w, 3, cluster.WithNormalization(false))
	require.NoError(t, err)
	require.Len(t, raw.Ranges, 3)
	for _, r := range raw.Ranges {
		assert.Equal(t, solver.Range{Low: 0.5, High: 10}, r, "min(w)/2 and sum(w)")
	}

	scaled, err := cluster.Prepare(coords, w, 3)
	require.NoError(t, err)
	assert.Equal(t, solver.Range{Low: 0.125, High: 2.5}, scaled.Ranges[0])
}

func TestPrepare_SuppliedMatrixReused(t *testing.T) {
	coords, w := square()
	d := mat.NewSymDense(4, []float64{
		0, 2, 4, 8,
		2, 0, 8, 4,
		4, 8, 0, 2,
		8, 4, 2, 0,
	})
	var cm countingMetric

	p, err := cluster.Prepare(coords, w, 2,
		cluster.WithDistanceMatrix(d),
		cluster.WithMetric(cm.fn()),
	)
	require.NoError(t, err)

	assert.Zero(t, cm.calls.Load(), "a supplied matrix replaces the build")
	assert.InDelta(t, 0.25, p.Dist.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, p.Dist.At(0, 3), 1e-12)
	assert.Equal(t, 8.0, p.DistScale)
	assert.Equal(t, 2.0, d.At(0, 1), "caller matrix untouched")
	assert.NotSame(t, d, p.Dist)
}

func TestPrepare_SuppliedMatrixIgnoredForFreePlacement(t *testing.T) {
	coords, w := square()

	p, err := cluster.Prepare(coords, w, 2,
		cluster.WithDistanceMatrix(mat.NewSymDense(7, nil)),
		cluster.WithPlaceToPoint(false),
	)
	require.NoError(t, err)
	assert.Nil(t, p.Dist)
}

func TestPrepare_CopiesCoordinates(t *testing.T) {
	coords, w := square()
	fixed := [][]float64{{5, 5}}

	p, err := cluster.Prepare(coords, w, 2, cluster.WithFixedCenters(fixed))
	require.NoError(t, err)

	p.Coords[0][0] = 99
	p.FixedCenters[0][0] = 99
	assert.Equal(t, 0.0, coords[0][0])
	assert.Equal(t, 5.0, fixed[0][0])
}
