// Package distance provides the distance oracles used to rank vectors.
//
// All distance functions use SIMD-optimized implementations from
// github.com/viterin/vek when available (AVX2 on x86-64, pure Go elsewhere).
//
// # Supported Metrics
//
//   - MetricEuclidean: L2 distance, sqrt(sum((a-b)^2))
//   - MetricCosine: 1 - cosine similarity; 1 when either vector has zero norm
//   - MetricManhattan: L1 distance, sum(|a-b|)
//
// # Usage
//
//	fn, err := distance.Provider(distance.MetricEuclidean)
//	checked := distance.Checked(fn)
//	d, err := checked(a, b) // ErrDimensionMismatch / ErrNonFinite on bad input
package distance
