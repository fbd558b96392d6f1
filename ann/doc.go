// Package ann adapts approximate nearest-neighbor indexes to the evaluation
// harness.
//
// An Index is a black box: it answers a query with an ordered neighbor list
// and accepts an opaque effort knob. Query forwards to it and bounds the
// result to k. Exact is an Index backed by brute-force ranking; measured
// against itself it must score a recall of 1.0, which validates the harness.
package ann
