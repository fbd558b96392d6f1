package topk

import (
	"iter"
	"slices"
)

// Median selects the top k with a 2k working buffer and a running threshold.
//
// Until the buffer first fills there is no threshold and every candidate is
// appended. Once it holds 2k entries, selectNth places the rank k-1 candidate
// at index k-1; that candidate becomes the threshold and the buffer is cut
// back to its k smallest entries. From then on a candidate that does not sort
// strictly before the threshold is discarded without touching the buffer.
// The threshold compares full candidates (distance, then ID), which keeps the
// result identical to Heap on exact distance ties.
type Median struct {
	buf []Candidate

	// Rebalances counts partial selections performed by the last Select.
	Rebalances int
}

// NewMedian creates a median-threshold selector.
func NewMedian() *Median {
	return &Median{buf: make([]Candidate, 0, 32)}
}

// Select implements Selector.
func (m *Median) Select(candidates iter.Seq[Candidate], k int) Result {
	m.Rebalances = 0
	if k <= 0 {
		return Result{}
	}

	m.reset(k)

	var (
		threshold Candidate
		bounded   bool
	)
	for c := range candidates {
		if bounded && !c.Less(threshold) {
			continue
		}
		m.buf = append(m.buf, c)
		if len(m.buf) == 2*k {
			selectNth(m.buf, k-1)
			threshold = m.buf[k-1]
			bounded = true
			m.buf = m.buf[:k]
			m.Rebalances++
		}
	}

	slices.SortFunc(m.buf, Candidate.Compare)
	if len(m.buf) > k {
		m.buf = m.buf[:k]
	}
	return slices.Clone(Result(m.buf))
}

func (m *Median) reset(k int) {
	m.buf = m.buf[:0]
	want := reserveLimit
	if k <= reserveLimit/2 {
		want = 2 * k
	}
	if cap(m.buf) < want {
		m.buf = make([]Candidate, 0, want)
	}
}

// selectNth reorders s so that s[n] holds the candidate of rank n, everything
// before it sorts at or below it and everything after at or above it.
// Quickselect with a median-of-three pivot and a three-way partition, so runs
// of equal candidates do not degrade it.
func selectNth(s []Candidate, n int) {
	lo, hi := 0, len(s)-1
	for lo < hi {
		pivot := medianOfThree(s[lo], s[lo+(hi-lo)/2], s[hi])
		lt, gt := partition3(s, lo, hi, pivot)
		switch {
		case n < lt:
			hi = lt - 1
		case n > gt:
			lo = gt + 1
		default:
			return
		}
	}
}

func medianOfThree(a, b, c Candidate) Candidate {
	if b.Less(a) {
		a, b = b, a
	}
	if c.Less(b) {
		b = c
		if b.Less(a) {
			b = a
		}
	}
	return b
}

// partition3 splits s[lo:hi+1] into < pivot, == pivot, > pivot and returns
// the bounds [lt, gt] of the middle run.
func partition3(s []Candidate, lo, hi int, pivot Candidate) (int, int) {
	lt, i, gt := lo, lo, hi
	for i <= gt {
		switch r := s[i].Compare(pivot); {
		case r < 0:
			s[lt], s[i] = s[i], s[lt]
			lt++
			i++
		case r > 0:
			s[i], s[gt] = s[gt], s[i]
			gt--
		default:
			i++
		}
	}
	return lt, gt
}
