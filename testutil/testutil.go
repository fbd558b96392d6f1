package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/annrecall/topk"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Shuffle pseudo-randomizes the order of s.
func (r *RNG) Shuffle(s []topk.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors clustered around random centroids.
// Useful for testing ANN index performance on non-uniform data.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	centroids := r.GaussianVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		centroid := centroids[i%clusters]
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// Candidates generates n candidates with IDs 0..n-1 in random order.
// Distances are drawn from `distinct` evenly spaced values in [0, 1), so a
// small distinct count produces many exact ties. distinct <= 0 draws
// unrestricted uniform distances.
func (r *RNG) Candidates(n, distinct int) []topk.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]topk.Candidate, n)
	for i := range out {
		var d float32
		if distinct > 0 {
			d = float32(r.rand.Intn(distinct)) / float32(distinct)
		} else {
			d = r.rand.Float32()
		}
		out[i] = topk.Candidate{ID: uint32(i), Distance: topk.Distance(d)}
	}
	r.rand.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortTopK is the reference top-k: a full sort of a copy of candidates by
// (distance, ID), truncated to k.
func SortTopK(candidates []topk.Candidate, k int) topk.Result {
	if k <= 0 {
		return topk.Result{}
	}
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b topk.Candidate) int {
		switch {
		case float64(a.Distance) < float64(b.Distance):
			return -1
		case float64(a.Distance) > float64(b.Distance):
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return topk.Result(sorted)
}

// BruteForce computes exact Euclidean neighbors of query over
// vectors (IDs are slice indexes) with a full sort.
func BruteForce(vectors [][]float32, query []float32, k int) topk.Result {
	cands := make([]topk.Candidate, len(vectors))
	for i, v := range vectors {
		var sum float64
		for j := range v {
			d := float64(v[j]) - float64(query[j])
			sum += d * d
		}
		cands[i] = topk.Candidate{ID: uint32(i), Distance: topk.Distance(math.Sqrt(sum))}
	}
	return SortTopK(cands, k)
}

// ComputeRecall computes recall@r the plain way: the first r ground-truth IDs
// form a map, the first r retrieved IDs are looked up, and the hit count is
// divided by r.
func ComputeRecall(groundTruth, retrieved []uint32, r int) float64 {
	if r <= 0 {
		return 0
	}

	truthSet := make(map[uint32]struct{}, r)
	for _, id := range groundTruth[:min(r, len(groundTruth))] {
		truthSet[id] = struct{}{}
	}

	seen := make(map[uint32]struct{}, r)
	hits := 0
	for _, id := range retrieved[:min(r, len(retrieved))] {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := truthSet[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(r)
}
