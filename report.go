package annrecall

import (
	"strconv"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LevelScore is the aggregated recall at one level.
type LevelScore struct {
	Level  int     `json:"level" yaml:"level"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

// LatencySummary describes approximate query latency across trials.
// It is informational and varies between runs.
type LatencySummary struct {
	Count int64         `json:"count" yaml:"count"`
	P50   time.Duration `json:"p50" yaml:"p50"`
	P90   time.Duration `json:"p90" yaml:"p90"`
	P99   time.Duration `json:"p99" yaml:"p99"`
	Max   time.Duration `json:"max" yaml:"max"`
}

// Report is the result of a run: mean recall per level, in level order.
// Levels is bit-identical across runs with the same configuration, dataset
// and index; Latency and Elapsed are not.
type Report struct {
	Metric       string         `json:"metric" yaml:"metric"`
	Selector     string         `json:"selector" yaml:"selector"`
	BaseSeed     uint64         `json:"base_seed" yaml:"base_seed"`
	NumTrials    int            `json:"num_trials" yaml:"num_trials"`
	SearchEffort int            `json:"search_effort" yaml:"search_effort"`
	Vectors      int            `json:"vectors" yaml:"vectors"`
	Dimension    int            `json:"dimension" yaml:"dimension"`
	Levels       []LevelScore   `json:"levels" yaml:"levels"`
	Latency      LatencySummary `json:"latency" yaml:"latency"`
	Elapsed      time.Duration  `json:"elapsed" yaml:"elapsed"`
}

// Recall returns the mean recall keyed by level.
func (r *Report) Recall() map[int]float64 {
	out := make(map[int]float64, len(r.Levels))
	for _, ls := range r.Levels {
		out[ls.Level] = ls.Mean
	}
	return out
}

// At returns the mean recall at level.
func (r *Report) At(level int) (float64, bool) {
	for _, ls := range r.Levels {
		if ls.Level == level {
			return ls.Mean, true
		}
	}
	return 0, false
}

func levelKey(level int) string {
	return "recall@" + strconv.Itoa(level)
}

const (
	minLatency = time.Microsecond
	maxLatency = time.Minute
)

// summarizeLatency records per-trial query latencies into an HDR histogram.
func summarizeLatency(latencies []time.Duration) LatencySummary {
	h := hdrhistogram.New(int64(minLatency), int64(maxLatency), 3)
	for _, d := range latencies {
		v := min(max(int64(d), int64(minLatency)), int64(maxLatency))
		// v is clamped into the trackable range, so RecordValue cannot fail.
		_ = h.RecordValue(v)
	}
	if h.TotalCount() == 0 {
		return LatencySummary{}
	}
	return LatencySummary{
		Count: h.TotalCount(),
		P50:   time.Duration(h.ValueAtQuantile(50)),
		P90:   time.Duration(h.ValueAtQuantile(90)),
		P99:   time.Duration(h.ValueAtQuantile(99)),
		Max:   time.Duration(h.Max()),
	}
}
