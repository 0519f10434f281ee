package cluster_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/capclust/cluster"
)

func TestNewReporter_Progress(t *testing.T) {
	var buf bytes.Buffer
	r := cluster.NewReporter(cluster.PrintProgress, &buf)

	r.Report(cluster.Event{Restart: 1, Total: 2, Completed: 1})
	half := "\r[" + strings.Repeat("=", 20) + strings.Repeat(" ", 20) + "] 1/2"
	assert.Equal(t, half, buf.String())

	r.Report(cluster.Event{Restart: 2, Total: 2, Completed: 2})
	full := "\r[" + strings.Repeat("=", 40) + "] 2/2\n"
	assert.Equal(t, half+full, buf.String())
}

func TestNewReporter_Steps(t *testing.T) {
	var buf bytes.Buffer
	r := cluster.NewReporter(cluster.PrintSteps, &buf)

	r.Report(cluster.Event{Restart: 3, Total: 10, Completed: 1, Objective: 0.25, Elapsed: 1500 * time.Microsecond})
	r.Report(cluster.Event{Restart: 4, Total: 10, Completed: 2, Elapsed: 2 * time.Millisecond, Err: errors.New("boom")})

	assert.Equal(t,
		"restart 3/10 done in 1.5ms, objective 0.25\n"+
			"restart 4/10 failed after 2ms: boom\n",
		buf.String())
}

func TestNewReporter_Silent(t *testing.T) {
	var buf bytes.Buffer
	cluster.NewReporter(cluster.PrintNone, &buf).Report(cluster.Event{Restart: 1, Total: 1, Completed: 1})
	cluster.NewReporter(cluster.PrintSteps, nil).Report(cluster.Event{Restart: 1, Total: 1, Completed: 1})
	assert.Empty(t, buf.String())
}

func TestParsePrintMode(t *testing.T) {
	for in, want := range map[string]cluster.PrintMode{
		"progress": cluster.PrintProgress,
		"":         cluster.PrintProgress,
		"Steps":    cluster.PrintSteps,
		"silent":   cluster.PrintNone,
		"none":     cluster.PrintNone,
	} {
		got, err := cluster.ParsePrintMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" && in != "silent" {
			assert.Equal(t, strings.ToLower(in), got.String())
		}
	}

	_, err := cluster.ParsePrintMode("verbose")
	assert.ErrorIs(t, err, cluster.ErrValidation)
}
