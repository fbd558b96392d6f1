package annrecall

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/annrecall/ann"
	"github.com/hupe1980/annrecall/ann/hnsw"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/recall"
	"github.com/hupe1980/annrecall/testutil"
	"github.com/hupe1980/annrecall/topk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clustered(t testing.TB, n, dim int) *dataset.Memory {
	t.Helper()
	rng := testutil.NewRNG(99)
	ds, err := dataset.FromVectors(rng.ClusteredVectors(n, dim, 8, 0.2))
	require.NoError(t, err)
	return ds
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NumTrials = 40
	cfg.RecallLevels = []int{1, 5, 10}
	return cfg
}

func TestEvaluate_ExactIndexIsPerfect(t *testing.T) {
	ds := clustered(t, 300, 8)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)

	for _, sel := range []topk.Algorithm{topk.AlgorithmHeap, topk.AlgorithmMedian} {
		cfg := testConfig()
		cfg.Selector = sel
		ev, err := New(ds, idx, cfg)
		require.NoError(t, err)

		report, err := ev.Evaluate(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Levels, 3)
		for _, ls := range report.Levels {
			assert.Equal(t, 1.0, ls.Mean, "recall@%d", ls.Level)
			assert.Equal(t, 0.0, ls.StdDev)
		}
		assert.Equal(t, map[int]float64{1: 1, 5: 1, 10: 1}, report.Recall())
		assert.Equal(t, int64(cfg.NumTrials), report.Latency.Count)
	}
}

func TestEvaluate_DeterministicAcrossWorkers(t *testing.T) {
	ds := clustered(t, 1500, 16)
	idx, err := hnsw.Build(context.Background(), ds, distance.MetricEuclidean, func(o *hnsw.Options) {
		o.M = 4
		o.EfConstruction = 16
	})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.NumTrials = 64
	cfg.SearchEffort = 10

	var reports []*Report
	for _, workers := range []int{1, 3, 16} {
		ev, err := New(ds, idx, cfg, WithWorkers(workers))
		require.NoError(t, err)
		r, err := ev.Evaluate(context.Background())
		require.NoError(t, err)
		reports = append(reports, r)
	}

	for _, r := range reports[1:] {
		assert.Equal(t, reports[0].Levels, r.Levels)
	}
	for _, ls := range reports[0].Levels {
		assert.GreaterOrEqual(t, ls.Mean, 0.0)
		assert.LessOrEqual(t, ls.Mean, 1.0)
	}
}

func TestEvaluate_MeanOfTrials(t *testing.T) {
	ds := clustered(t, 200, 4)
	cfg := testConfig()
	cfg.NumTrials = 10
	cfg.RecallLevels = []int{1, 2}

	// The stub returns the true nearest neighbor followed by the farthest vector.
	exactIdx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)
	stub := ann.IndexFunc(func(ctx context.Context, q []float32, k, effort int) (topk.Result, error) {
		all, err := exactIdx.Search(ctx, q, ds.Len(), effort)
		if err != nil {
			return nil, err
		}
		return topk.Result{all[0], all[len(all)-1]}, nil
	})

	ev, err := New(ds, stub, cfg)
	require.NoError(t, err)
	report, err := ev.Evaluate(context.Background())
	require.NoError(t, err)

	at1, ok := report.At(1)
	require.True(t, ok)
	at2, ok := report.At(2)
	require.True(t, ok)
	assert.Equal(t, 1.0, at1)
	assert.Equal(t, 0.5, at2)

	_, ok = report.At(3)
	assert.False(t, ok)
}

func TestRunTrial_Replay(t *testing.T) {
	ds := clustered(t, 200, 4)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)

	ev, err := New(ds, idx, testConfig())
	require.NoError(t, err)

	a, err := ev.RunTrial(context.Background(), 7)
	require.NoError(t, err)
	b, err := ev.RunTrial(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, a.Seed, b.Seed)
	assert.Equal(t, a.QueryID, b.QueryID)
	assert.Equal(t, a.Scores, b.Scores)
	assert.Equal(t, DeriveSeed(42, 7), a.Seed)
}

func TestDeriveSeed(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := range 1000 {
		s := DeriveSeed(42, i)
		assert.False(t, seen[s], "trial %d", i)
		seen[s] = true
		assert.Equal(t, s, DeriveSeed(42, i))
	}
	assert.NotEqual(t, DeriveSeed(1, 0), DeriveSeed(2, 0))

	for i := range 100 {
		q := QueryIndex(DeriveSeed(7, i), 13)
		assert.GreaterOrEqual(t, q, 0)
		assert.Less(t, q, 13)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	ds := clustered(t, 20, 2)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)

	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"zero trials", func(c *Config) { c.NumTrials = 0 }, "num_trials"},
		{"no levels", func(c *Config) { c.RecallLevels = nil }, "recall_levels"},
		{"zero level", func(c *Config) { c.RecallLevels = []int{0, 1} }, "recall_levels"},
		{"non-increasing", func(c *Config) { c.RecallLevels = []int{2, 2} }, "recall_levels"},
		{"exceeds dataset", func(c *Config) { c.RecallLevels = []int{1, 21} }, "recall_levels"},
		{"metric", func(c *Config) { c.Metric = distance.Metric(77) }, "metric"},
		{"selector", func(c *Config) { c.Selector = topk.Algorithm(77) }, "selector"},
		{"effort", func(c *Config) { c.SearchEffort = -1 }, "search_effort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.edit(&cfg)
			_, err := New(ds, idx, cfg)
			require.ErrorIs(t, err, ErrConfig)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}

	t.Run("exceeds dataset unwraps to level error", func(t *testing.T) {
		cfg := testConfig()
		cfg.RecallLevels = []int{100}
		_, err := New(ds, idx, cfg)
		var le *recall.ErrInvalidLevel
		assert.ErrorAs(t, err, &le)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := New(ds, nil, testConfig())
		assert.ErrorIs(t, err, ErrConfig)
	})

	t.Run("empty dataset", func(t *testing.T) {
		_, err := New(dataset.NewMemory(2), idx, testConfig())
		assert.ErrorIs(t, err, ErrConfig)
	})
}

func TestEvaluate_DataError(t *testing.T) {
	ds := dataset.NewMemory(2)
	for i := range 20 {
		require.NoError(t, ds.Add(uint32(i), []float32{float32(i), 0}))
	}
	require.NoError(t, ds.Add(20, []float32{float32(math.Inf(1)), 0}))

	idx := ann.IndexFunc(func(context.Context, []float32, int, int) (topk.Result, error) {
		return topk.Result{}, nil
	})
	ev, err := New(ds, idx, testConfig())
	require.NoError(t, err)

	_, err = ev.Evaluate(context.Background())
	require.ErrorIs(t, err, ErrData)
	var de *DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, DeriveSeed(42, de.Trial), de.Seed)
	var nf *distance.ErrNonFinite
	assert.ErrorAs(t, err, &nf)
}

func TestEvaluate_IndexDimensionMismatchIsDataError(t *testing.T) {
	ds := clustered(t, 50, 4)
	other := clustered(t, 50, 3)
	idx, err := hnsw.Build(context.Background(), other, distance.MetricEuclidean)
	require.NoError(t, err)

	ev, err := New(ds, idx, testConfig())
	require.NoError(t, err)
	_, err = ev.Evaluate(context.Background())
	assert.ErrorIs(t, err, ErrData)
}

func TestEvaluate_StorageError(t *testing.T) {
	ds := clustered(t, 50, 2)
	boom := errors.New("index unavailable")
	var calls atomic.Int64
	idx := ann.IndexFunc(func(context.Context, []float32, int, int) (topk.Result, error) {
		if calls.Add(1) == 5 {
			return nil, boom
		}
		return topk.Result{}, nil
	})

	metrics := &BasicMetricsCollector{}
	ev, err := New(ds, idx, testConfig(), WithMetricsCollector(metrics), WithWorkers(1))
	require.NoError(t, err)

	_, err = ev.Evaluate(context.Background())
	require.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "query", se.Op)
	assert.Equal(t, 4, se.Trial)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.QueryErrors)
	assert.Equal(t, int64(1), stats.TrialErrors)
}

func TestEvaluate_Canceled(t *testing.T) {
	ds := clustered(t, 50, 2)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)
	ev, err := New(ds, idx, testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ev.Evaluate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_MetricsAndLogging(t *testing.T) {
	ds := clustered(t, 100, 4)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}

	cfg := testConfig()
	ev, err := New(ds, idx, cfg,
		WithLogger(logger),
		WithMetricsCollector(metrics),
		WithProgressInterval(time.Hour),
	)
	require.NoError(t, err)

	_, err = ev.Evaluate(context.Background())
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(cfg.NumTrials), stats.TrialCount)
	assert.Equal(t, int64(cfg.NumTrials), stats.QueryCount)
	assert.Equal(t, int64(cfg.NumTrials), stats.GroundTruthCount)
	assert.Equal(t, int64(cfg.NumTrials*ds.Len()), stats.VectorsScanned)
	assert.Zero(t, stats.TrialErrors)

	out := buf.String()
	assert.Contains(t, out, "evaluation started")
	assert.Contains(t, out, "trial completed")
	assert.Contains(t, out, "evaluation completed")
	assert.Contains(t, out, "recall@10=1")
	assert.Equal(t, 1, strings.Count(out, "evaluation progress"), "progress is throttled")
}
