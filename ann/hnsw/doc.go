// Package hnsw implements a Hierarchical Navigable Small World graph, the
// default approximate index measured by annrecall.
//
// The graph is built once from a dataset and is read-only afterwards, so
// Search is safe for concurrent use. Node levels are drawn from a seeded
// generator, which makes a build from the same dataset and options
// reproducible.
//
// Tuning:
//
//   - M: links per node on upper layers (2*M on layer 0).
//   - EfConstruction: candidate list size while linking.
//   - ef at search time: the "effort" passed to Search; larger values trade
//     latency for recall. Zero selects Options.EfSearch.
package hnsw
