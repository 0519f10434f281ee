package solver

import "math/rand"

// defaultRNGSeed is the fixed seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the seed is used verbatim.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes a parent seed and a stream identifier into an independent
// 64-bit seed (SplitMix64 finaliser). Restart i of a run uses
// DeriveSeed(runSeed, i), so restarts explore different starts while the run
// as a whole stays reproducible. parent==0 is replaced by defaultRNGSeed.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	if parent == 0 {
		parent = defaultRNGSeed
	}
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}
