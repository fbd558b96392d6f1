package annrecall

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/annrecall/ann"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/exact"
	"github.com/hupe1980/annrecall/recall"
)

// Evaluator runs recall trials of an approximate index against exact ground truth.
// The dataset and index are shared read-only by all trials.
type Evaluator struct {
	ds   dataset.Dataset
	idx  ann.Index
	cfg  Config
	opts options

	// per-trial working state, one per running worker
	scratch sync.Pool
}

type trialScratch struct {
	ranker *exact.Ranker
	scorer *recall.Scorer
}

// New validates cfg against ds and returns an Evaluator.
// Recall levels larger than the dataset fail here, before any trial runs.
func New(ds dataset.Dataset, idx ann.Index, cfg Config, optFns ...Option) (*Evaluator, error) {
	cfg.RecallLevels = append([]int(nil), cfg.RecallLevels...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, &ConfigError{Field: "dataset", cause: dataset.ErrEmpty}
	}
	if idx == nil {
		return nil, &ConfigError{Field: "index", cause: errors.New("no index")}
	}
	if top := cfg.MaxLevel(); top > ds.Len() {
		return nil, &ConfigError{Field: "recall_levels", cause: &recall.ErrInvalidLevel{
			Index:  len(cfg.RecallLevels) - 1,
			Level:  top,
			Reason: fmt.Sprintf("exceeds dataset size %d", ds.Len()),
		}}
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Evaluator{ds: ds, idx: idx, cfg: cfg, opts: opts}
	e.scratch.New = func() any {
		// Config was validated above, so construction cannot fail.
		r, _ := exact.NewRanker(cfg.Metric, cfg.Selector)
		s, _ := recall.NewScorer(cfg.RecallLevels)
		return &trialScratch{ranker: r, scorer: s}
	}
	return e, nil
}

// Config returns the evaluator's configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// DeriveSeed returns the seed of trial i. It depends only on base and i, so a
// trial can be replayed alone.
func DeriveSeed(base uint64, trial int) uint64 {
	// splitmix64 finalizer over a golden-ratio stride
	z := base + uint64(trial+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// QueryIndex returns the dataset position trial seed picks as its query.
func QueryIndex(seed uint64, n int) int {
	return rand.New(rand.NewPCG(seed, seed)).IntN(n)
}

// TrialResult is the outcome of one trial.
type TrialResult struct {
	Trial   int
	Seed    uint64
	QueryID uint32
	Scores  []float64
	Latency time.Duration
}

// Evaluate runs all trials and aggregates their scores. Any failing trial
// aborts the run and its error is returned.
func (e *Evaluator) Evaluate(ctx context.Context) (*Report, error) {
	start := time.Now()
	n := e.cfg.NumTrials
	logger := e.opts.logger

	logger.LogRunStart(ctx, e.cfg, e.ds.Len(), e.opts.workers)

	results := make([]TrialResult, n)
	progress := rate.Sometimes{Interval: e.opts.progressInterval}
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.RunTrial(gctx, i)
			if err != nil {
				return err
			}
			results[i] = res

			finished := int(done.Add(1))
			if e.opts.progressInterval > 0 {
				progress.Do(func() { logger.LogProgress(gctx, finished, n) })
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.LogRun(ctx, nil, time.Since(start), err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		logger.LogRun(ctx, nil, time.Since(start), err)
		return nil, err
	}

	report := e.aggregate(results)
	report.Elapsed = time.Since(start)
	logger.LogRun(ctx, report, report.Elapsed, nil)
	return report, nil
}

// RunTrial runs trial i on its own: pick a query from the derived seed,
// compute ground truth, query the index and score.
func (e *Evaluator) RunTrial(ctx context.Context, i int) (TrialResult, error) {
	started := time.Now()
	seed := DeriveSeed(e.cfg.BaseSeed, i)
	queryID, query := e.ds.At(QueryIndex(seed, e.ds.Len()))
	info := trialInfo{trial: i, seed: seed, queryID: queryID}

	res, err := e.runTrial(ctx, query)
	res.Trial, res.Seed, res.QueryID = i, seed, queryID

	err = translateError(info, "trial", err)
	e.opts.metricsCollector.RecordTrial(i, time.Since(started), err)
	e.opts.logger.LogTrial(ctx, i, seed, queryID, res.Scores, err)
	return res, err
}

func (e *Evaluator) runTrial(ctx context.Context, query []float32) (TrialResult, error) {
	if err := ctx.Err(); err != nil {
		return TrialResult{}, err
	}

	s := e.scratch.Get().(*trialScratch)
	defer e.scratch.Put(s)

	k := e.cfg.MaxLevel()

	gtStart := time.Now()
	gt, err := s.ranker.Rank(query, e.ds, k)
	if err != nil {
		return TrialResult{}, err
	}
	e.opts.metricsCollector.RecordGroundTruth(e.ds.Len(), time.Since(gtStart))

	qStart := time.Now()
	retrieved, err := ann.Query(ctx, e.idx, query, k, e.cfg.SearchEffort)
	latency := time.Since(qStart)
	e.opts.metricsCollector.RecordQuery(k, latency, err)
	if err != nil {
		return TrialResult{}, err
	}

	scores, err := s.scorer.Score(gt, retrieved)
	if err != nil {
		return TrialResult{}, err
	}
	return TrialResult{Scores: scores, Latency: latency}, nil
}

// aggregate averages scores per level. Trials are summed in index order, so
// the result does not depend on scheduling.
func (e *Evaluator) aggregate(results []TrialResult) *Report {
	levels := e.cfg.RecallLevels
	column := make([]float64, len(results))
	latencies := make([]time.Duration, len(results))
	for i, r := range results {
		latencies[i] = r.Latency
	}

	report := &Report{
		Metric:       e.cfg.Metric.String(),
		Selector:     e.cfg.Selector.String(),
		BaseSeed:     e.cfg.BaseSeed,
		NumTrials:    e.cfg.NumTrials,
		SearchEffort: e.cfg.SearchEffort,
		Vectors:      e.ds.Len(),
		Dimension:    e.ds.Dimension(),
		Levels:       make([]LevelScore, len(levels)),
		Latency:      summarizeLatency(latencies),
	}
	for j, level := range levels {
		for i, r := range results {
			column[i] = r.Scores[j]
		}
		ls := LevelScore{Level: level, Mean: stat.Mean(column, nil)}
		if len(column) > 1 {
			ls.StdDev = stat.StdDev(column, nil)
		}
		report.Levels[j] = ls
	}
	return report
}
