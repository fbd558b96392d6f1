// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "datasets/")
//	ds, err := dataset.OpenMat(ctx, store, "sift-128.mat", 128)
//
// Reads use ranged GetObject calls; Put goes through the S3 upload manager,
// which switches to multipart uploads for large matrices.
package s3
