package cluster

import (
	"time"

	"github.com/katalvlaran/capclust/normalize"
	"github.com/katalvlaran/capclust/solver"
)

// Result is the selected clustering plus the run's bookkeeping.
//
// The embedded solver.Result is expressed in the solver's units: when
// normalisation is on, Objective and Loads are in normalised units and
// Ranges holds the normalised ranges. RawLoads converts Loads back to
// capacity-weight units. Centers are always in input coordinates.
type Result struct {
	solver.Result

	// Restart is the 1-based index of the selected restart.
	Restart int `json:"restart"`

	// Objectives holds every restart's objective in restart order; NaN marks
	// a failed restart.
	Objectives []float64 `json:"-"`

	// Failures lists the errors of discarded restarts (each a *RestartError).
	Failures []error `json:"-"`

	Ranges   []solver.Range    `json:"ranges"`
	Scaling  normalize.Scaling `json:"scaling"`
	RawLoads []float64         `json:"raw_loads"`
	Elapsed  time.Duration     `json:"elapsed_ns"`
}
