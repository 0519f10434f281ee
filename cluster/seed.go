package cluster

import "github.com/katalvlaran/capclust/solver"

// RestartSeed returns the solver seed of restart i (1-based) in a run seeded
// with seed. It is exported so a single restart can be replayed directly
// against the solver.
func RestartSeed(seed int64, i int) int64 {
	return solver.DeriveSeed(seed, uint64(i))
}
