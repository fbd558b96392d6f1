package topk

import "iter"

// Heap selects the top k with a bounded max-heap.
//
// The heap root is always the worst of the k best candidates seen so far. A
// new candidate that sorts before the root replaces it and is sifted down;
// anything else is dropped. Items are stored by value.
type Heap struct {
	items []Candidate
}

// NewHeap creates a heap selector.
func NewHeap() *Heap {
	return &Heap{items: make([]Candidate, 0, 16)}
}

// Select implements Selector.
func (h *Heap) Select(candidates iter.Seq[Candidate], k int) Result {
	if k <= 0 {
		return Result{}
	}

	h.reset(k)
	for c := range candidates {
		h.pushBounded(c, k)
	}

	// Draining a max-heap yields descending order; fill from the back.
	out := make(Result, len(h.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i], _ = h.pop()
	}
	return out
}

// Len returns the number of candidates currently held.
func (h *Heap) Len() int {
	return len(h.items)
}

func (h *Heap) reset(k int) {
	h.items = h.items[:0]
	if want := min(k, reserveLimit); cap(h.items) < want {
		h.items = make([]Candidate, 0, want)
	}
}

// top returns the worst retained candidate.
func (h *Heap) top() (Candidate, bool) {
	if len(h.items) == 0 {
		return Candidate{}, false
	}
	return h.items[0], true
}

func (h *Heap) push(c Candidate) {
	h.items = append(h.items, c)
	h.siftUp(len(h.items) - 1)
}

// pushBounded inserts c while the heap holds fewer than capacity entries,
// otherwise replaces the root if c sorts before it.
func (h *Heap) pushBounded(c Candidate, capacity int) {
	if len(h.items) < capacity {
		h.push(c)
		return
	}
	if top, _ := h.top(); c.Less(top) {
		h.items[0] = c
		h.siftDown(0)
	}
}

func (h *Heap) pop() (Candidate, bool) {
	n := len(h.items)
	if n == 0 {
		return Candidate{}, false
	}

	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]

	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item, true
}

// above reports whether the element at i belongs above the element at j.
func (h *Heap) above(i, j int) bool {
	return h.items[j].Less(h.items[i])
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.above(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && h.above(right, left) {
			child = right
		}
		if !h.above(child, i) {
			break
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}
