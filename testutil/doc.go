// Package testutil provides testing utilities for annrecall.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG, vector and candidate generators, and
// sort-based reference implementations that the selectors and the recall
// scorer are checked against.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 128)
//
// # Reference Top-K
//
//	want := testutil.SortTopK(candidates, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(groundTruthIDs, retrievedIDs, r)
package testutil
