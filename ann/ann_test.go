package ann_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/annrecall/ann"
	"github.com/hupe1980/annrecall/ann/hnsw"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/recall"
	"github.com/hupe1980/annrecall/topk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ann.Index = (*hnsw.Index)(nil)

func lineDataset(t *testing.T) *dataset.Memory {
	t.Helper()
	ds := dataset.NewMemory(2)
	require.NoError(t, ds.Add(1, []float32{0, 0}))
	require.NoError(t, ds.Add(2, []float32{1, 0}))
	require.NoError(t, ds.Add(3, []float32{2, 0}))
	require.NoError(t, ds.Add(4, []float32{5, 0}))
	return ds
}

func TestQuery_PassThrough(t *testing.T) {
	var gotK, gotEffort int
	stub := ann.IndexFunc(func(_ context.Context, _ []float32, k, effort int) (topk.Result, error) {
		gotK, gotEffort = k, effort
		return topk.Result{{ID: 1, Distance: 0}, {ID: 3, Distance: 2}}, nil
	})

	res, err := ann.Query(context.Background(), stub, []float32{0, 0}, 2, 37)
	require.NoError(t, err)
	assert.Equal(t, 2, gotK)
	assert.Equal(t, 37, gotEffort)

	gt := topk.Result{{ID: 1, Distance: 0}, {ID: 2, Distance: 1}}
	scores, err := recall.Score(gt, res, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 1.0, 2: 0.5}, scores)
}

func TestQuery_Bounds(t *testing.T) {
	long := ann.IndexFunc(func(context.Context, []float32, int, int) (topk.Result, error) {
		return topk.Result{{ID: 1}, {ID: 2}, {ID: 3}}, nil
	})
	res, err := ann.Query(context.Background(), long, nil, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, res.IDs())

	short := ann.IndexFunc(func(context.Context, []float32, int, int) (topk.Result, error) {
		return topk.Result{{ID: 9}}, nil
	})
	res, err = ann.Query(context.Background(), short, nil, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{9}, res.IDs(), "partial results are valid")

	res, err = ann.Query(context.Background(), short, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestQuery_Errors(t *testing.T) {
	boom := errors.New("boom")
	failing := ann.IndexFunc(func(context.Context, []float32, int, int) (topk.Result, error) {
		return nil, boom
	})
	_, err := ann.Query(context.Background(), failing, nil, 3, 7)
	var qe *ann.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 3, qe.K)
	assert.Equal(t, 7, qe.Effort)
	assert.ErrorIs(t, err, boom)

	canceled := ann.IndexFunc(func(ctx context.Context, _ []float32, _, _ int) (topk.Result, error) {
		return nil, context.Canceled
	})
	_, err = ann.Query(context.Background(), canceled, nil, 1, 0)
	assert.Equal(t, context.Canceled, err)
}

func TestExact(t *testing.T) {
	ds := lineDataset(t)
	idx, err := ann.NewExact(ds, distance.MetricEuclidean, topk.AlgorithmHeap)
	require.NoError(t, err)

	res, err := ann.Query(context.Background(), idx, []float32{0, 0}, 2, 999)
	require.NoError(t, err)
	assert.Equal(t, topk.Result{{ID: 1, Distance: 0}, {ID: 2, Distance: 1}}, res)

	scores, err := recall.Score(res, res, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 1, 2: 1}, scores)

	_, err = ann.NewExact(ds, distance.Metric(99), topk.AlgorithmHeap)
	assert.Error(t, err)

	_, err = ann.Query(context.Background(), idx, []float32{0}, 2, 0)
	var qe *ann.QueryError
	require.ErrorAs(t, err, &qe)
	var dimErr *distance.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dimErr)
}
