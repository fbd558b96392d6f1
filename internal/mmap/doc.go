// Package mmap maps dataset files read-only into memory.
//
// Exact ranking scans every vector of a dataset once per trial, so matrix
// files are mapped instead of read: all trials share one read-only view, and
// the kernel pages rows in on demand. Open takes an access hint which is
// forwarded to madvise(2) on Unix and ignored on Windows.
//
//	m, err := mmap.Open("vectors.mat", mmap.AccessSequential)
//	if err != nil { ... }
//	defer m.Close()
//	rows := m.Bytes()
//
// A Mapping is safe for concurrent reads. Close is idempotent; the slice
// returned by Bytes must not be used after Close.
package mmap
