package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/annrecall/blobstore"
	miniostore "github.com/hupe1980/annrecall/blobstore/minio"
	s3store "github.com/hupe1980/annrecall/blobstore/s3"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/dataset/badgerstore"
)

const (
	schemeS3     = "s3"
	schemeMinio  = "minio"
	schemeBadger = "badger"
	prefixRandom = "random:"
)

// loadOptions are the dataset parsing knobs shared by eval and import.
type loadOptions struct {
	dim    int
	limit  int
	logger *slog.Logger
}

// openDataset resolves src into a dataset. The returned release function
// must be called once the dataset is no longer used.
//
// Accepted forms:
//
//	random:N:DIM[:SEED]
//	badger://DIR
//	s3://BUCKET/KEY
//	minio://ENDPOINT/BUCKET/KEY
//	PATH
//
// Blob names ending in .mat (optionally .zst or .lz4 compressed) are read as
// little-endian float32 matrices, anything else as text vectors.
func openDataset(ctx context.Context, src string, o loadOptions) (dataset.Dataset, func() error, error) {
	noop := func() error { return nil }

	if spec, ok := strings.CutPrefix(src, prefixRandom); ok {
		n, dim, seed, err := parseRandom(spec)
		if err != nil {
			return nil, nil, err
		}
		return dataset.Random(n, dim, seed), noop, nil
	}

	if dir, ok := strings.CutPrefix(src, schemeBadger+"://"); ok {
		ds, err := loadBadger(ctx, dir, o.logger)
		if err != nil {
			return nil, nil, err
		}
		return ds, noop, nil
	}

	store, name, err := openBlobStore(ctx, src)
	if err != nil {
		return nil, nil, err
	}

	if isMat(name) {
		if o.dim <= 0 {
			return nil, nil, fmt.Errorf("%s: --dim is required for .mat datasets", src)
		}
		m, err := dataset.OpenMat(ctx, store, name, o.dim)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}

	ds, err := dataset.OpenText(ctx, store, name, o.limit)
	if err != nil {
		return nil, nil, err
	}
	return ds, noop, nil
}

func isMat(name string) bool {
	return path.Ext(dataset.TrimCompression(name)) == ".mat"
}

// parseRandom parses "N:DIM[:SEED]".
func parseRandom(spec string) (n, dim int, seed uint64, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("random source %q: want random:N:DIM[:SEED]", spec)
	}
	if n, err = strconv.Atoi(parts[0]); err != nil || n <= 0 {
		return 0, 0, 0, fmt.Errorf("random source %q: invalid vector count", spec)
	}
	if dim, err = strconv.Atoi(parts[1]); err != nil || dim <= 0 {
		return 0, 0, 0, fmt.Errorf("random source %q: invalid dimension", spec)
	}
	seed = dataset.DefaultRandomSeed
	if len(parts) == 3 {
		if seed, err = strconv.ParseUint(parts[2], 10, 64); err != nil {
			return 0, 0, 0, fmt.Errorf("random source %q: invalid seed: %w", spec, err)
		}
	}
	return n, dim, seed, nil
}

func loadBadger(ctx context.Context, dir string, logger *slog.Logger) (*dataset.Memory, error) {
	st, err := badgerstore.Open(dir, badgerstore.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()
	return st.Load(ctx)
}

// openBlobStore splits a blob location into a store and the name of the blob in it.
func openBlobStore(ctx context.Context, loc string) (blobstore.Store, string, error) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain paths, including Windows drive letters
		return blobstore.NewLocalStore(filepath.Dir(loc)), filepath.Base(loc), nil
	}

	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case schemeS3:
		if u.Host == "" || key == "" {
			return nil, "", fmt.Errorf("%s: want s3://BUCKET/KEY", loc)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("loading aws config: %w", err)
		}
		store := s3store.NewStore(awss3.NewFromConfig(cfg), u.Host, path.Dir(key))
		return store, path.Base(key), nil

	case schemeMinio:
		bucket, key, ok := strings.Cut(key, "/")
		if u.Host == "" || !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("%s: want minio://ENDPOINT/BUCKET/KEY", loc)
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: u.Query().Get("secure") != "false",
		})
		if err != nil {
			return nil, "", err
		}
		return miniostore.NewStore(client, bucket, path.Dir(key)), path.Base(key), nil

	case "file":
		p := filepath.FromSlash(u.Path)
		return blobstore.NewLocalStore(filepath.Dir(p)), filepath.Base(p), nil
	}
	return nil, "", fmt.Errorf("%s: unsupported scheme %q", loc, u.Scheme)
}

// blobExists reports whether name is present in store.
func blobExists(ctx context.Context, store blobstore.Store, name string) (bool, error) {
	b, err := store.Open(ctx, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, b.Close()
}
