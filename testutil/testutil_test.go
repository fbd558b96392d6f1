package testutil

import (
	"testing"

	"github.com/hupe1980/annrecall/topk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
}

func TestCandidates(t *testing.T) {
	rng := NewRNG(7)
	c := rng.Candidates(100, 4)
	require.Len(t, c, 100)

	seen := make(map[uint32]bool)
	for _, cand := range c {
		seen[cand.ID] = true
		assert.Contains(t, []topk.Distance{0, 0.25, 0.5, 0.75}, cand.Distance)
	}
	assert.Len(t, seen, 100)
}

func TestSortTopK(t *testing.T) {
	in := []topk.Candidate{{ID: 3, Distance: 1}, {ID: 1, Distance: 2}, {ID: 2, Distance: 1}}

	got := SortTopK(in, 2)

	assert.Equal(t, topk.Result{{ID: 2, Distance: 1}, {ID: 3, Distance: 1}}, got)
	assert.Equal(t, uint32(3), in[0].ID, "input must not be reordered")
	assert.Empty(t, SortTopK(in, 0))
}

func TestComputeRecall(t *testing.T) {
	gt := []uint32{1, 2, 3, 4}

	assert.Equal(t, 1.0, ComputeRecall(gt, []uint32{2, 1}, 2))
	assert.Equal(t, 0.5, ComputeRecall(gt, []uint32{1, 9}, 2))
	assert.Equal(t, 0.25, ComputeRecall(gt, []uint32{4}, 4))
	assert.Equal(t, 0.5, ComputeRecall(gt, []uint32{1, 1, 2}, 4))
}
