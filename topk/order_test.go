package topk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKeyOrder(t *testing.T) {
	ordered := []Distance{
		Distance(math.Inf(-1)),
		-math.MaxFloat32,
		-1000,
		-1,
		-math.SmallestNonzeroFloat32,
		0,
		math.SmallestNonzeroFloat32,
		0.5,
		1,
		1000,
		math.MaxFloat32,
		Distance(math.Inf(1)),
	}

	for i := 1; i < len(ordered); i++ {
		a, b := ordered[i-1], ordered[i]
		assert.Less(t, a.Key(), b.Key(), "%v should sort before %v", a, b)
		assert.True(t, a.Less(b))
		assert.Equal(t, -1, a.Compare(b))
		assert.Equal(t, 1, b.Compare(a))
	}
}

func TestDistanceSignedZero(t *testing.T) {
	negZero := Distance(math.Copysign(0, -1))

	assert.Equal(t, Distance(0).Key(), negZero.Key())
	assert.Equal(t, 0, negZero.Compare(0))
	assert.False(t, negZero.Less(0))
	assert.False(t, Distance(0).Less(negZero))
}

func TestDistanceIsFinite(t *testing.T) {
	assert.True(t, Distance(1).IsFinite())
	assert.True(t, MaxDistance.IsFinite())
	assert.False(t, Distance(math.Inf(1)).IsFinite())
	assert.False(t, Distance(math.NaN()).IsFinite())
}

func TestCandidateCompare(t *testing.T) {
	a := Candidate{ID: 2, Distance: 1}
	b := Candidate{ID: 5, Distance: 1}
	c := Candidate{ID: 1, Distance: 2}

	assert.True(t, a.Less(b), "ties break by ascending ID")
	assert.True(t, b.Less(c), "distance dominates ID")
	assert.Equal(t, 0, a.Compare(a))
}

func TestResultHelpers(t *testing.T) {
	r := Result{{ID: 1, Distance: 0}, {ID: 2, Distance: 1}}

	assert.Equal(t, []uint32{1, 2}, r.IDs())
	maxC, ok := r.Max()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), maxC.ID)
	assert.Len(t, r.Prefix(1), 1)
	assert.Len(t, r.Prefix(10), 2)

	_, ok = Result{}.Max()
	assert.False(t, ok)
}

func TestSelectNth(t *testing.T) {
	s := []Candidate{
		{ID: 9, Distance: 5}, {ID: 1, Distance: 1}, {ID: 4, Distance: 3},
		{ID: 3, Distance: 3}, {ID: 7, Distance: 0}, {ID: 8, Distance: 3},
	}

	selectNth(s, 2)

	assert.Equal(t, Candidate{ID: 3, Distance: 3}, s[2])
	for _, c := range s[:2] {
		assert.True(t, c.Less(s[2]))
	}
	for _, c := range s[3:] {
		assert.True(t, s[2].Less(c))
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("Median")
	assert.NoError(t, err)
	assert.Equal(t, AlgorithmMedian, a)
	assert.Equal(t, "median", a.String())

	a, err = ParseAlgorithm(" heap ")
	assert.NoError(t, err)
	assert.Equal(t, AlgorithmHeap, a)

	_, err = ParseAlgorithm("quick")
	assert.Error(t, err)

	_, err = New(Algorithm(9))
	assert.Error(t, err)
}
