package topk

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Selector picks the k smallest candidates of a one-pass sequence.
//
// Implementations keep reusable scratch memory and are NOT safe for
// concurrent use. The returned Result never aliases that scratch memory.
type Selector interface {
	// Select consumes candidates exactly once and returns min(k, n) entries
	// in ascending order. k <= 0 yields an empty result.
	Select(candidates iter.Seq[Candidate], k int) Result
}

// Algorithm names a Selector implementation.
type Algorithm int

const (
	// AlgorithmHeap selects with a bounded max-heap.
	AlgorithmHeap Algorithm = iota
	// AlgorithmMedian selects with a 2k buffer and a rank k-1 threshold.
	AlgorithmMedian
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmHeap:
		return "heap"
	case AlgorithmMedian:
		return "median"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ParseAlgorithm parses "heap" or "median" (case-insensitive).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap":
		return AlgorithmHeap, nil
	case "median":
		return AlgorithmMedian, nil
	default:
		return 0, fmt.Errorf("topk: unknown selector algorithm %q", s)
	}
}

// New returns a fresh Selector for the given algorithm.
func New(a Algorithm) (Selector, error) {
	switch a {
	case AlgorithmHeap:
		return NewHeap(), nil
	case AlgorithmMedian:
		return NewMedian(), nil
	default:
		return nil, fmt.Errorf("topk: unsupported selector algorithm %v", a)
	}
}

// SelectSlice runs sel over an in-memory slice.
func SelectSlice(sel Selector, candidates []Candidate, k int) Result {
	return sel.Select(slices.Values(candidates), k)
}

// reserveLimit caps up-front buffer reservation so that a k far larger than
// the actual input does not allocate eagerly.
const reserveLimit = 1 << 16
