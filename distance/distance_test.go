package distance

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{0, 0}, []float32{3, 4}, 5},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Axis", []float32{0, 0}, []float32{2, 0}, 2},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, float32(math.Sqrt(8))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Euclidean(tt.a, tt.b))
		})
	}
}

func TestEuclidean_ExactOnLattice(t *testing.T) {
	origin := make([]float32, 19)
	for i := range 200 {
		p := make([]float32, 19)
		p[i%19] = float32(i)
		assert.Equal(t, float32(i), Euclidean(origin, p), "axis %d", i)
		assert.Equal(t, float32(i), Euclidean(p, origin), "axis %d", i)
	}

	// 3-4-5 triangles scaled along the full vector length
	a := make([]float32, 128)
	b := make([]float32, 128)
	for i := range 64 {
		b[2*i], b[2*i+1] = 3, 4
	}
	assert.Equal(t, float32(40), Euclidean(a, b))
}

func TestManhattan(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{0, 0}, []float32{3, 4}, 7},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Manhattan(tt.a, tt.b), 1e-5)
		})
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Same", []float32{1, 0}, []float32{2, 0}, 0},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"ZeroNorm", []float32{0, 0}, []float32{1, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Cosine(tt.a, tt.b))
		})
	}
}

func TestCosine_SelfIsZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	for i := range 1000 {
		v := make([]float32, 1+i%37)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		assert.Equal(t, float32(0), Cosine(v, v), "case %d", i)

		w := make([]float32, len(v))
		for j := range w {
			w[j] = float32(rng.NormFloat64())
		}
		d := Cosine(v, w)
		assert.GreaterOrEqual(t, d, float32(0), "case %d", i)
		assert.LessOrEqual(t, d, float32(2), "case %d", i)
	}
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "euclidean", MetricEuclidean.String())
	assert.Equal(t, "cosine", MetricCosine.String())
	assert.Equal(t, "manhattan", MetricManhattan.String())
	assert.Equal(t, "Unknown(99)", Metric(99).String())
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{
		"euclidean": MetricEuclidean,
		"L2":        MetricEuclidean,
		"Cosine":    MetricCosine,
		"manhattan": MetricManhattan,
		" l1 ":      MetricManhattan,
	} {
		got, err := ParseMetric(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMetric("hamming")
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestProvider(t *testing.T) {
	for _, m := range []Metric{MetricEuclidean, MetricCosine, MetricManhattan} {
		fn, err := Provider(m)
		require.NoError(t, err)
		assert.NotNil(t, fn)
	}

	_, err := Provider(Metric(42))
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestChecked(t *testing.T) {
	checked := Checked(Euclidean)

	d, err := checked([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(1), d)

	_, err = checked([]float32{0, 0}, []float32{1, 0, 0})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)

	inf := float32(math.Inf(1))
	_, err = checked([]float32{0}, []float32{inf})
	var nf *ErrNonFinite
	assert.ErrorAs(t, err, &nf)

	nan := func(a, b []float32) float32 { return float32(math.NaN()) }
	_, err = Checked(nan)([]float32{1}, []float32{1})
	assert.ErrorAs(t, err, &nf)
}
