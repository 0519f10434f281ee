// Package cluster is the multi-restart driver for capacitated clustering.
//
// A run goes through five stages:
//
//  1. options are resolved into a complete configuration (defaults that depend
//     on other inputs, such as the capacity range, are filled in here);
//  2. the configuration and the point set are validated; nothing expensive
//     happens before this step succeeds;
//  3. the point-to-point distance matrix is built (only when cluster heads are
//     restricted to input points and no matrix was supplied);
//  4. distances, weights and capacity ranges are normalised;
//  5. the solver is run N times with independent seeds, sequentially or on a
//     bounded worker pool, and the lowest objective wins.
//
// Selection is deterministic: results are folded in restart order and a later
// restart replaces the running best only when its objective is strictly
// lower, so ties go to the earliest restart regardless of scheduling.
//
// Restarts that fail (for example because the capacity ranges cannot be met
// from the sampled start) are discarded, logged and listed in
// Result.Failures. Run fails with ErrNoFeasibleRestart only when every
// restart fails.
//
// Progress reporting goes through a Reporter and never affects the outcome.
// Logging uses zap (no-op by default); metrics go through the Metrics hook
// (see package promstats for a Prometheus implementation).
//
// Example:
//
//	res, err := cluster.Run(ctx, coords, weights, 4,
//		cluster.WithRestarts(20),
//		cluster.WithRange(80, 120),
//		cluster.WithWorkers(runtime.NumCPU()),
//		cluster.WithSeed(7),
//	)
package cluster
