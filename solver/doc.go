// Package solver implements a single pass of capacitated clustering:
// starting from one randomised set of cluster heads it alternates
//
//  1. a capacitated assignment of points to the current heads, and
//  2. a relocation of every non-fixed head for the current assignment,
//
// until the objective stops improving (a capacity-aware Lloyd iteration).
//
// Assignment:
//   - MethodLP formulates the capacitated transportation problem
//     min Σ cᵢⱼ·xᵢⱼ + Σ oᵢ·gᵢ
//     s.t. Σⱼ xᵢⱼ + oᵢ = mᵢ, lowⱼ ≤ Σᵢ cwᵢ·xᵢⱼ ≤ highⱼ, 0 ≤ xᵢⱼ ≤ 1
//     and solves it with gonum's simplex. Fractional runs keep the LP
//     solution; hard runs round it and repair the capacity ranges.
//     The dense tableau makes the LP the slow path: hard runs with more
//     than Params.LPMaxVars (default 1000) variables use MethodGreedy.
//   - MethodGreedy assigns points in decreasing regret order, then repairs.
//
// Hard assignments are finally improved with feasibility-preserving moves and
// swaps. The outgroup (oᵢ) exists only when a lambda is configured.
//
// Relocation:
//   - heads restricted to input points move to the weighted medoid of their
//     members (never onto a point already used by another head);
//   - free heads move to the weighted centroid of their members when that
//     does not increase the cluster's cost;
//   - fixed heads never move.
//
// Errors:
//   - ErrBadProblem  – malformed Problem (shapes, nil metric);
//   - ErrInfeasible  – the capacity ranges cannot be met from this start;
//   - ErrLP          – numeric failure of the LP in a fractional run.
//
// A Solve call is a pure function of the Problem and the Start: all state is
// local, the Problem is only read, and the same seed yields the same Result.
package solver
