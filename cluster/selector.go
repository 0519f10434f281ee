package cluster

import (
	"math"

	"github.com/katalvlaran/capclust/solver"
)

// selector keeps the lowest-objective result. Offers must arrive in restart
// order; a later result wins only when strictly lower, so the earliest
// restart wins ties.
type selector struct {
	best    *solver.Result
	restart int
}

// offer folds result r of restart i into the running best and reports
// whether it took over. Nil results (failed restarts) and NaN objectives
// are ignored.
func (s *selector) offer(i int, r *solver.Result) bool {
	if r == nil || math.IsNaN(r.Objective) {
		return false
	}
	if s.best == nil || r.Objective < s.best.Objective {
		s.best, s.restart = r, i
		return true
	}

	return false
}
