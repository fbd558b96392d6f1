package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/annrecall"
	"github.com/hupe1980/annrecall/ann"
	"github.com/hupe1980/annrecall/ann/hnsw"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	annprom "github.com/hupe1980/annrecall/metrics/prometheus"
	"github.com/hupe1980/annrecall/topk"
)

const (
	indexHNSW  = "hnsw"
	indexExact = "exact"
)

func newEvalCmd(conf *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run recall trials against an index built from a dataset",
		Example: `  annrecall eval --dataset vectors.txt
  annrecall eval --dataset random:50000:128 --recall-levels 1,10,100 --effort 128
  annrecall eval --dataset s3://bucket/sift.mat.zst --dim 128 --output yaml
  annrecall eval --dataset badger://./data --index exact`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEval(cmd, conf)
		},
	}

	def := annrecall.DefaultConfig()
	f := cmd.Flags()
	f.String("dataset", "", "Dataset source: PATH, s3://, minio://, badger:// or random:N:DIM[:SEED].")
	f.String("metric", def.Metric.String(), "Distance metric, one of [euclidean, cosine, manhattan].")
	f.String("selector", def.Selector.String(), "Ground-truth top-k selector, one of [heap, median].")
	f.Uint64("seed", def.BaseSeed, "Base seed for trial derivation.")
	f.Int("trials", def.NumTrials, "Number of trials.")
	f.String("recall-levels", joinInts(def.RecallLevels), "Comma-separated, strictly increasing recall levels.")
	f.Int("effort", 0, "Search effort passed to the index (hnsw ef); 0 uses the index default.")
	f.Int("workers", 0, "Parallel trials; 0 uses GOMAXPROCS.")
	f.Duration("progress-interval", 5*time.Second, "Minimum time between progress log lines; 0 disables them.")
	f.String("index", indexHNSW, "Index under test, one of [hnsw, exact].")
	f.Int("hnsw-m", hnsw.DefaultOptions.M, "HNSW links per node.")
	f.Int("hnsw-ef-construction", hnsw.DefaultOptions.EfConstruction, "HNSW candidate list size while building.")
	f.Uint64("hnsw-seed", hnsw.DefaultOptions.Seed, "HNSW level assignment seed.")
	f.String("output", outputText, "Report format, one of [text, json, yaml].")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112).")
	return cmd
}

func runEval(cmd *cobra.Command, conf *viper.Viper) error {
	ctx := cmd.Context()
	logger, err := newLogger(conf, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg, err := evalConfig(conf)
	if err != nil {
		return err
	}
	format := conf.GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	src := conf.GetString("dataset")
	if src == "" {
		return errors.New("--dataset is required")
	}
	loadStart := time.Now()
	ds, release, err := openDataset(ctx, src, loadOptions{
		dim:    conf.GetInt("dim"),
		limit:  conf.GetInt("limit"),
		logger: logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = release() }()
	logger.InfoContext(ctx, "dataset loaded",
		"source", src,
		"vectors", humanize.Comma(int64(ds.Len())),
		"dimension", ds.Dimension(),
		"size", humanize.IBytes(uint64(4*ds.Len()*ds.Dimension())),
		"elapsed", time.Since(loadStart),
	)

	idx, err := buildIndex(ctx, conf, ds, cfg.Metric)
	if err != nil {
		return err
	}

	opts := []annrecall.Option{
		annrecall.WithLogger(logger),
		annrecall.WithProgressInterval(conf.GetDuration("progress-interval")),
	}
	if w := conf.GetInt("workers"); w > 0 {
		opts = append(opts, annrecall.WithWorkers(w))
	}
	if addr := conf.GetString("metrics-addr"); addr != "" {
		collector, shutdown, err := serveMetrics(ctx, addr)
		if err != nil {
			return err
		}
		defer shutdown()
		logger.InfoContext(ctx, "serving metrics", "addr", addr)
		opts = append(opts, annrecall.WithMetricsCollector(collector))
	}

	ev, err := annrecall.New(ds, idx, cfg, opts...)
	if err != nil {
		return err
	}
	report, err := ev.Evaluate(ctx)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

func evalConfig(conf *viper.Viper) (annrecall.Config, error) {
	cfg := annrecall.DefaultConfig()

	metric, err := distance.ParseMetric(conf.GetString("metric"))
	if err != nil {
		return cfg, err
	}
	sel, err := topk.ParseAlgorithm(conf.GetString("selector"))
	if err != nil {
		return cfg, err
	}
	levels, err := parseLevels(conf.GetString("recall-levels"))
	if err != nil {
		return cfg, err
	}

	cfg.Metric = metric
	cfg.Selector = sel
	cfg.BaseSeed = conf.GetUint64("seed")
	cfg.NumTrials = conf.GetInt("trials")
	cfg.RecallLevels = levels
	cfg.SearchEffort = conf.GetInt("effort")
	return cfg, cfg.Validate()
}

func buildIndex(ctx context.Context, conf *viper.Viper, ds dataset.Dataset, metric distance.Metric) (ann.Index, error) {
	switch kind := conf.GetString("index"); kind {
	case indexExact:
		return ann.NewExact(ds, metric, topk.AlgorithmHeap)
	case indexHNSW:
		return hnsw.Build(ctx, ds, metric, func(o *hnsw.Options) {
			o.M = conf.GetInt("hnsw-m")
			o.EfConstruction = conf.GetInt("hnsw-ef-construction")
			o.Seed = conf.GetUint64("hnsw-seed")
		})
	default:
		return nil, fmt.Errorf("unknown index %q", kind)
	}
}

// serveMetrics starts a Prometheus endpoint on addr. The returned function
// stops the server.
func serveMetrics(ctx context.Context, addr string) (annrecall.MetricsCollector, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := annprom.New(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return collector, func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}, nil
}

func parseLevels(s string) ([]int, error) {
	var levels []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		l, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid recall level %q", part)
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
