package exact

import (
	"fmt"
	"iter"

	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/topk"
)

// RankError reports the dataset vector whose distance could not be computed.
type RankError struct {
	ID  uint32
	Err error
}

func (e *RankError) Error() string {
	return fmt.Sprintf("exact: vector %d: %v", e.ID, e.Err)
}

func (e *RankError) Unwrap() error {
	return e.Err
}

// Ranker computes exact top-k results.
// A Ranker is not safe for concurrent use; give each goroutine its own.
type Ranker struct {
	metric    distance.Metric
	algorithm topk.Algorithm
	dist      distance.CheckedFunc
	sel       topk.Selector
}

// NewRanker returns a Ranker for the given metric and selection algorithm.
func NewRanker(metric distance.Metric, algorithm topk.Algorithm) (*Ranker, error) {
	fn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	sel, err := topk.New(algorithm)
	if err != nil {
		return nil, err
	}
	return &Ranker{
		metric:    metric,
		algorithm: algorithm,
		dist:      distance.Checked(fn),
		sel:       sel,
	}, nil
}

// Metric returns the ranker's distance metric.
func (r *Ranker) Metric() distance.Metric { return r.metric }

// Algorithm returns the ranker's selection algorithm.
func (r *Ranker) Algorithm() topk.Algorithm { return r.algorithm }

// Rank returns the k nearest dataset vectors to query, ascending by distance
// with ties broken by identifier. The first distance error stops the scan.
func (r *Ranker) Rank(query []float32, ds dataset.Dataset, k int) (topk.Result, error) {
	if len(query) != ds.Dimension() {
		return nil, &distance.ErrDimensionMismatch{Expected: ds.Dimension(), Actual: len(query)}
	}

	var scanErr error
	res := r.sel.Select(r.candidates(query, ds, &scanErr), k)
	if scanErr != nil {
		return nil, scanErr
	}
	return res, nil
}

func (r *Ranker) candidates(query []float32, ds dataset.Dataset, errp *error) iter.Seq[topk.Candidate] {
	return func(yield func(topk.Candidate) bool) {
		for id, vec := range ds.All() {
			d, err := r.dist(query, vec)
			if err != nil {
				*errp = &RankError{ID: id, Err: err}
				return
			}
			if !yield(topk.Candidate{ID: id, Distance: topk.Distance(d)}) {
				return
			}
		}
	}
}
