package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultRandomSeed seeds Random when callers have no seed of their own.
	DefaultRandomSeed = 42
	// DefaultRandomDimension is the dimension of generated vectors by default.
	DefaultRandomDimension = 768

	randomMean   = 10
	randomStdDev = 10
)

// Random generates n vectors of dim coordinates drawn from N(10, 10).
// Identifiers are 0..n-1. The same seed always yields the same dataset.
func Random(n, dim int, seed uint64) *Memory {
	normal := distuv.Normal{
		Mu:    randomMean,
		Sigma: randomStdDev,
		Src:   rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}

	m := NewMemory(dim)
	m.Grow(n)
	vec := make([]float32, dim)
	for i := range n {
		for j := range vec {
			vec[j] = float32(normal.Rand())
		}
		// Identifiers are unique by construction.
		_ = m.Add(uint32(i), vec)
	}
	return m
}
