package distance

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/viterin/vek/vek32"
)

// ErrUnsupportedMetric is returned for metrics without a float32 implementation.
var ErrUnsupportedMetric = errors.New("unsupported metric")

// ErrDimensionMismatch indicates two vectors of different length were compared.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrNonFinite indicates a metric produced NaN or an infinity.
type ErrNonFinite struct {
	Value float32
}

func (e *ErrNonFinite) Error() string {
	return fmt.Sprintf("non-finite distance: %v", e.Value)
}

// diffPool holds scratch buffers for the element-wise difference in Euclidean.
var diffPool = sync.Pool{
	New: func() any {
		buf := make([]float32, 0, 256)
		return &buf
	},
}

// Euclidean calculates the L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
//
// The squared sum is taken with SIMD and the root in float64, so distances
// between integer-valued points come out exact on every CPU.
func Euclidean(a, b []float32) float32 {
	bufp := diffPool.Get().(*[]float32)
	diff := slices.Grow((*bufp)[:0], len(a))[:len(a)]
	vek32.Sub_Into(diff, a, b)
	sq := vek32.Dot(diff, diff)
	*bufp = diff
	diffPool.Put(bufp)
	return float32(math.Sqrt(float64(sq)))
}

// Manhattan calculates the L1 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Manhattan(a, b []float32) float32 {
	return vek32.ManhattanDistance(a, b)
}

// Cosine calculates 1 - cosine_similarity(a, b), clamped to [0, 2].
// A zero-norm vector is at distance 1 from everything, and a vector is at
// distance exactly 0 from itself.
func Cosine(a, b []float32) float32 {
	sqA := float64(vek32.Dot(a, a))
	sqB := float64(vek32.Dot(b, b))
	if sqA == 0 || sqB == 0 {
		return 1
	}
	sim := float64(vek32.Dot(a, b)) / math.Sqrt(sqA*sqB)
	return float32(min(max(1-sim, 0), 2))
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricCosine
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricCosine:
		return "cosine"
	case MetricManhattan:
		return "manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric parses a metric name (case-insensitive).
// "l2" and "l1" are accepted as aliases.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "cosine":
		return MetricCosine, nil
	case "manhattan", "l1":
		return MetricManhattan, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricCosine:
		return Cosine, nil
	case MetricManhattan:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMetric, m)
	}
}

// CheckedFunc is a distance function that validates its inputs and output.
type CheckedFunc func(a, b []float32) (float32, error)

// Checked wraps fn so that a length mismatch returns *ErrDimensionMismatch
// instead of truncating or panicking, and a NaN or infinite result returns
// *ErrNonFinite.
func Checked(fn Func) CheckedFunc {
	return func(a, b []float32) (float32, error) {
		if len(a) != len(b) {
			return 0, &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
		}
		d := fn(a, b)
		if f := float64(d); math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &ErrNonFinite{Value: d}
		}
		return d, nil
	}
}
