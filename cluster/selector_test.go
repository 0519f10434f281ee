package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/capclust/solver"
)

func TestSelector_FirstMinimumWins(t *testing.T) {
	var s selector
	for i, obj := range []float64{5, 3, 3, 4} {
		s.offer(i+1, &solver.Result{Objective: obj, Iterations: i + 1})
	}

	assert.Equal(t, 2, s.restart)
	assert.Equal(t, 2, s.best.Iterations)
}

func TestSelector_SkipsFailures(t *testing.T) {
	var s selector
	assert.False(t, s.offer(1, nil))
	assert.True(t, s.offer(2, &solver.Result{Objective: 9}))
	assert.False(t, s.offer(3, &solver.Result{Objective: 9}))
	assert.True(t, s.offer(4, &solver.Result{Objective: 8.5}))
	assert.Equal(t, 4, s.restart)
}

func TestSelector_NaNNeverSeedsBest(t *testing.T) {
	var s selector
	assert.False(t, s.offer(1, &solver.Result{Objective: math.NaN()}))
	assert.True(t, s.offer(2, &solver.Result{Objective: 2}))
	assert.False(t, s.offer(3, &solver.Result{Objective: math.NaN()}))
	assert.True(t, s.offer(4, &solver.Result{Objective: 1}))
	assert.Equal(t, 4, s.restart)
}
