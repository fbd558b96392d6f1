// Package topk selects the k smallest-distance candidates from a stream.
//
// Two interchangeable algorithms implement the Selector interface:
//
//   - Heap: a bounded max-heap of size k. Every accepted candidate costs
//     O(log k); the worst element is replaced in place when a better one arrives.
//   - Median: a 2k working buffer with a low-water threshold. Candidates at or
//     above the threshold are discarded in O(1); when the buffer fills, a
//     linear-time selection finds the element of rank k-1, which becomes the
//     new threshold, and the buffer is cut back to k.
//
// Both consume their input exactly once, in order, through an iter.Seq, and
// never hold more than O(k) candidates.
//
// # Ordering
//
// Distances are compared through the Distance type, whose Key maps every
// non-NaN float32 onto a uint32 with the same order. Negative and positive
// zero compare equal. Equal distances are ordered by ascending identifier, so
// results are fully determined by the set of input candidates and never by
// their arrival order.
//
// # Usage
//
//	sel := topk.NewMedian()
//	res := sel.Select(slices.Values(candidates), 10)
//	for _, c := range res {
//	    fmt.Println(c.ID, c.Distance)
//	}
package topk
