package promstats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/capclust/cluster"
)

func TestCollector_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "capclust")
	require.NoError(t, err)

	c.ObserveRestart(1, 10*time.Millisecond, 1.5, nil)
	c.ObserveRestart(2, 20*time.Millisecond, 0, errors.New("infeasible"))
	c.ObserveRestart(3, 5*time.Millisecond, 1.2, nil)
	c.ObserveRun(3, 1, 1.2, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.restarts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.restarts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runFailures))
	assert.Equal(t, 1.2, testutil.ToFloat64(c.bestObjective))
	assert.Equal(t, 1, testutil.CollectAndCount(c.restartDuration))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, n, "two restart series plus five single-series metrics")
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "capclust")
	require.NoError(t, err)

	_, err = New(reg, "capclust")
	assert.Error(t, err)
}

func TestCollector_WithRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "test")
	require.NoError(t, err)

	coords := [][]float64{{0, 0}, {1, 0}, {10, 0}, {11, 0}}
	_, err = cluster.Run(context.Background(), coords, []float64{1, 1, 1, 1}, 2,
		cluster.WithRestarts(3),
		cluster.WithRange(2, 2),
		cluster.WithPrintMode(cluster.PrintNone),
		cluster.WithMetrics(c),
	)
	require.NoError(t, err)

	assert.Equal(t, 3.0,
		testutil.ToFloat64(c.restarts.WithLabelValues("ok"))+testutil.ToFloat64(c.restarts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs))
}
