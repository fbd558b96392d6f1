// Package blobstore abstracts where dataset files live.
//
// A Store hands out read-only Blobs and accepts whole-blob writes; the dataset
// package reads text vector files and little-endian matrix files through it,
// and the import command writes matrix files back.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, blobs are memory-mapped
//   - MemoryStore: in-process map, for tests and scratch imports
//   - s3.Store: Amazon S3 with range reads and managed uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Blobs backed by memory implement Mappable so readers can take the bytes
// without a copy:
//
//	blob, err := store.Open(ctx, "sift.mat")
//	if err != nil { ... }
//	defer blob.Close()
//	data, err := blobstore.ReadAll(ctx, blob)
package blobstore
