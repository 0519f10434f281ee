// Package capclust is a multi-restart driver for capacitated clustering:
// weighted points in the plane are partitioned (or fractionally assigned)
// into exactly k groups whose total capacity weight must fall inside a
// target range, minimising the total weighted assignment cost.
//
// The heuristic alternates a capacitated assignment for fixed cluster heads
// with a relocation of the heads for a fixed assignment, and keeps the best of
// N independently seeded restarts.
//
// Packages:
//
//	metric/            - pluggable distance functions and a name registry
//	distmat/           - n×n distance matrices (build, validate)
//	normalize/         - rescaling of distances, weights and capacity ranges
//	solver/            - one capacity-aware Lloyd pass (LP or greedy assignment)
//	cluster/           - validation, preparation, restarts, best-of-N selection
//	cluster/promstats/ - Prometheus metrics for cluster runs
//	cmd/capclust/      - command-line front end (YAML config, CSV points)
//
// Quick start:
//
//	res, err := cluster.Run(ctx, coords, weights, 4,
//		cluster.WithRange(80, 120),
//		cluster.WithRestarts(20),
//		cluster.WithSeed(7),
//	)
//
// Determinism: restart i of a run seeded with s always uses seed
// cluster.RestartSeed(s, i), and selection folds restarts in index order, so
// the same inputs give the same result with any number of workers.
package capclust
