package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/annrecall"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/dataset/badgerstore"
)

func newImportCmd(conf *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a dataset into a badger store or a blob",
		Long: `import reads a dataset from any source eval accepts and writes it to a
badger database (badger://DIR) or a blob (PATH, s3://, minio://). Blob
destinations ending in .mat are written as float32 matrices, anything else as
text vectors. A .zst or .lz4 suffix compresses the blob.

An existing destination is left untouched unless --fresh is given.`,
		Example: `  annrecall import --dataset vectors.txt --limit 0 --to badger://./data
  annrecall import --dataset random:100000:128 --to s3://bucket/random.mat.zst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, conf)
		},
	}

	f := cmd.Flags()
	f.String("dataset", "", "Dataset source: PATH, s3://, minio://, badger:// or random:N:DIM[:SEED].")
	f.String("to", "", "Destination: badger://DIR, PATH, s3://BUCKET/KEY or minio://ENDPOINT/BUCKET/KEY.")
	f.Bool("fresh", false, "Replace an existing destination.")
	return cmd
}

func runImport(cmd *cobra.Command, conf *viper.Viper) error {
	ctx := cmd.Context()
	logger, err := newLogger(conf, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	src, dst := conf.GetString("dataset"), conf.GetString("to")
	if src == "" || dst == "" {
		return errors.New("--dataset and --to are required")
	}

	start := time.Now()
	ds, release, err := openDataset(ctx, src, loadOptions{
		dim:    conf.GetInt("dim"),
		limit:  conf.GetInt("limit"),
		logger: logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = release() }()

	fresh := conf.GetBool("fresh")
	var written int
	if dir, ok := strings.CutPrefix(dst, schemeBadger+"://"); ok {
		err = importBadger(ctx, dir, ds, fresh, logger)
		written = 4 * ds.Len() * ds.Dimension()
	} else {
		written, err = importBlob(ctx, dst, ds, fresh)
	}
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "dataset imported",
		"source", src,
		"destination", dst,
		"vectors", humanize.Comma(int64(ds.Len())),
		"dimension", ds.Dimension(),
		"size", humanize.IBytes(uint64(written)),
		"elapsed", time.Since(start),
	)
	return nil
}

func importBadger(ctx context.Context, dir string, ds dataset.Dataset, fresh bool, logger *annrecall.Logger) error {
	st, err := badgerstore.Open(dir, badgerstore.WithSyncWrites(), badgerstore.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if fresh {
		if err := st.Reset(); err != nil {
			return err
		}
	}
	if err := st.Import(ctx, ds); err != nil {
		if errors.Is(err, badgerstore.ErrNotEmpty) {
			return fmt.Errorf("%s: %w (use --fresh to replace it)", dir, err)
		}
		return err
	}
	return nil
}

// importBlob writes ds to dst and returns the number of bytes stored.
func importBlob(ctx context.Context, dst string, ds dataset.Dataset, fresh bool) (int, error) {
	store, name, err := openBlobStore(ctx, dst)
	if err != nil {
		return 0, err
	}
	if !fresh {
		exists, err := blobExists(ctx, store, name)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, fmt.Errorf("%s already exists (use --fresh to replace it)", dst)
		}
	}

	var raw []byte
	if isMat(name) {
		raw, err = dataset.EncodeMat(ds)
	} else {
		var buf bytes.Buffer
		err = dataset.WriteText(&buf, ds)
		raw = buf.Bytes()
	}
	if err != nil {
		return 0, err
	}
	if raw, err = dataset.Compress(raw, dataset.CompressionFor(name)); err != nil {
		return 0, err
	}
	return len(raw), store.Put(ctx, name, raw)
}
