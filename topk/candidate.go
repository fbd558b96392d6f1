package topk

import "cmp"

// Candidate is an (identifier, distance) pair produced while scanning a dataset.
type Candidate struct {
	ID       uint32
	Distance Distance
}

// Compare orders candidates by distance, breaking ties by ascending ID.
func (c Candidate) Compare(o Candidate) int {
	if r := c.Distance.Compare(o.Distance); r != 0 {
		return r
	}
	return cmp.Compare(c.ID, o.ID)
}

// Less reports whether c sorts strictly before o.
func (c Candidate) Less(o Candidate) bool {
	return c.Compare(o) < 0
}

// Result is an ordered top-k result: ascending by distance, ties by ID.
type Result []Candidate

// IDs returns the identifiers of r in result order.
func (r Result) IDs() []uint32 {
	ids := make([]uint32, len(r))
	for i, c := range r {
		ids[i] = c.ID
	}
	return ids
}

// Max returns the last (largest) candidate of r.
func (r Result) Max() (Candidate, bool) {
	if len(r) == 0 {
		return Candidate{}, false
	}
	return r[len(r)-1], true
}

// Prefix returns at most the first n candidates of r.
func (r Result) Prefix(n int) Result {
	if n < len(r) {
		return r[:n]
	}
	return r
}
