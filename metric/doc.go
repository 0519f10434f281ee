// Package metric provides pairwise distance functions for planar points.
//
// A metric is a plain binary function over two coordinate slices of equal
// length. The clustering driver treats it as an opaque, pure function: it is
// evaluated O(n²) times when a point-to-point distance matrix is required and
// O(n·k) times per iteration when cluster heads may be placed anywhere.
//
// Built-in metrics:
//
//	SquaredEuclidean – Σ (aᵢ − bᵢ)²   (default; centroid relocation is exact)
//	Euclidean        – √Σ (aᵢ − bᵢ)²
//	Manhattan        – Σ |aᵢ − bᵢ|
//	Chebyshev        – max |aᵢ − bᵢ|
//
// ByName resolves the textual names used in configuration files.
package metric
