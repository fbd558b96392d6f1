// Package dataset provides the read-only vector collections an evaluation
// run scans.
//
// A Dataset is a fixed-dimension sequence of (identifier, vector) pairs. It is
// opened once before a run and shared by every trial, so implementations must
// be safe for concurrent reads and callers must not modify returned vectors.
//
// Sources:
//
//   - Memory: vectors held in a single flat slice, built with Add or loaded
//     from the text format with ReadText/OpenText.
//   - Mat: a little-endian float32 row-major matrix (".mat"), identifiers are
//     row indices. Local blobs are used in place without copying.
//   - Random: Gaussian vectors, N(10, 10), from a fixed seed.
//
// The text format is one vector per line:
//
//	=== BEGIN vectors ===
//	0, [0.0100569, -0.0045358, 0.0099045]
//	1, [0.0231, 0.5, -1.25]
//	=== END vectors ===
//
// Files ending in ".zst" or ".lz4" are decompressed transparently.
package dataset
