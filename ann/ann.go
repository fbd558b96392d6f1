package ann

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/exact"
	"github.com/hupe1980/annrecall/topk"
)

// Index is the approximate search capability being evaluated.
// Implementations must be safe for concurrent Search calls.
type Index interface {
	// Search returns up to k neighbors of query in ascending distance order.
	// effort tunes how much work the index performs; 0 means the index default.
	Search(ctx context.Context, query []float32, k, effort int) (topk.Result, error)
}

// IndexFunc adapts a function to Index.
type IndexFunc func(ctx context.Context, query []float32, k, effort int) (topk.Result, error)

// Search implements Index.
func (f IndexFunc) Search(ctx context.Context, query []float32, k, effort int) (topk.Result, error) {
	return f(ctx, query, k, effort)
}

// QueryError wraps a failure reported by an index.
type QueryError struct {
	K      int
	Effort int
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("ann: query k=%d effort=%d: %v", e.K, e.Effort, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Query asks idx for k neighbors of query. A shorter result is returned as
// is; a longer one is truncated to k. Context errors are returned unwrapped.
func Query(ctx context.Context, idx Index, query []float32, k, effort int) (topk.Result, error) {
	if k <= 0 {
		return topk.Result{}, nil
	}

	res, err := idx.Search(ctx, query, k, effort)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &QueryError{K: k, Effort: effort, Err: err}
	}
	return res.Prefix(k), nil
}

// Exact is an Index that ranks by brute force. Effort is ignored.
type Exact struct {
	ds        dataset.Dataset
	metric    distance.Metric
	algorithm topk.Algorithm
	rankers   sync.Pool
}

var _ Index = (*Exact)(nil)

// NewExact returns an exact index over ds.
func NewExact(ds dataset.Dataset, metric distance.Metric, algorithm topk.Algorithm) (*Exact, error) {
	// Validate once so the pool constructor cannot fail.
	if _, err := exact.NewRanker(metric, algorithm); err != nil {
		return nil, err
	}
	e := &Exact{ds: ds, metric: metric, algorithm: algorithm}
	e.rankers.New = func() any {
		r, _ := exact.NewRanker(metric, algorithm)
		return r
	}
	return e, nil
}

// Search implements Index.
func (e *Exact) Search(ctx context.Context, query []float32, k, _ int) (topk.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := e.rankers.Get().(*exact.Ranker)
	defer e.rankers.Put(r)
	return r.Rank(query, e.ds, k)
}
