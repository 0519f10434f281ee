// Package distmat builds and validates point-to-point distance matrices.
//
// A distance matrix is needed only when cluster heads are restricted to input
// points; it is built once per clustering run and shared read-only by every
// restart. Matrices are stored as gonum *mat.SymDense values (upper triangle),
// so symmetry holds by construction for built matrices and is checked for
// caller-supplied ones.
//
// Complexity:
//   - Build:    O(n²/2) metric evaluations, O(n²) memory. Rows can be fanned
//     out to a bounded worker pool.
//   - Validate: O(n²).
package distmat
