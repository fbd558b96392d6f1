// Package annrecall measures the recall of approximate nearest-neighbor
// indexes against exact brute-force ground truth.
//
// # Quick Start
//
//	ds := dataset.Random(10_000, 128, dataset.DefaultRandomSeed)
//	idx, _ := hnsw.Build(ctx, ds, distance.MetricEuclidean)
//
//	cfg := annrecall.DefaultConfig()
//	cfg.RecallLevels = []int{1, 10, 100}
//	ev, _ := annrecall.New(ds, idx, cfg)
//	report, _ := ev.Evaluate(ctx)
//	for _, ls := range report.Levels {
//	    fmt.Printf("recall@%d = %.4f\n", ls.Level, ls.Mean)
//	}
//
// # Trials
//
// Each trial derives its own seed from Config.BaseSeed and its index
// (DeriveSeed), uses it to pick one query vector from the dataset, ranks the
// whole dataset exactly at k = max(RecallLevels), asks the index for the same
// k and scores recall at every level. Trials run in parallel on a bounded
// worker pool (WithWorkers). Per-level means are summed in trial order, so a
// report is bit-identical for the same inputs regardless of parallelism.
//
// # Errors
//
// Any failing trial aborts the run. Errors come in three kinds, each
// matchable with errors.Is:
//
//   - ErrConfig (*ConfigError): bad recall levels, zero trials, unknown
//     metric or selector. Reported by New before any trial runs.
//   - ErrData (*DataError): dimension mismatch or a non-finite distance.
//     Carries the trial index, seed and query identifier.
//   - ErrStorage (*StorageError): the dataset or index failed.
//
// # Observability
//
// WithLogger attaches a structured slog-based Logger; progress lines are
// throttled by WithProgressInterval. WithMetricsCollector receives per-trial,
// per-query and per-scan timings; metrics/prometheus exports them.
package annrecall
