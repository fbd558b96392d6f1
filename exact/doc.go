// Package exact computes ground-truth nearest neighbors by brute force.
//
// A Ranker scans every vector of a dataset exactly once, computes its
// distance to the query and streams the candidates through a bounded top-k
// selector. It is the reference that approximate indexes are measured
// against, so it favors correctness over speed: every distance is checked
// for dimension agreement and finiteness.
package exact
