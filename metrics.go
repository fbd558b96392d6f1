package annrecall

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting evaluation metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see package metrics/prometheus. Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordTrial is called after each trial.
	// duration covers ground truth, query and scoring; err is nil if successful.
	RecordTrial(trial int, duration time.Duration, err error)

	// RecordQuery is called after each approximate index query.
	// k is the number of neighbors requested.
	RecordQuery(k int, duration time.Duration, err error)

	// RecordGroundTruth is called after each exact scan over n vectors.
	RecordGroundTruth(n int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrial(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGroundTruth(int, time.Duration)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrialCount       atomic.Int64
	TrialErrors      atomic.Int64
	TrialTotalNanos  atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
	GroundTruthCount atomic.Int64
	GroundTruthNanos atomic.Int64
	VectorsScanned   atomic.Int64
}

// RecordTrial implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrial(_ int, duration time.Duration, err error) {
	b.TrialCount.Add(1)
	b.TrialTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrialErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordGroundTruth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGroundTruth(n int, duration time.Duration) {
	b.GroundTruthCount.Add(1)
	b.GroundTruthNanos.Add(duration.Nanoseconds())
	b.VectorsScanned.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrialCount:          b.TrialCount.Load(),
		TrialErrors:         b.TrialErrors.Load(),
		TrialAvgNanos:       avg(b.TrialTotalNanos.Load(), b.TrialCount.Load()),
		QueryCount:          b.QueryCount.Load(),
		QueryErrors:         b.QueryErrors.Load(),
		QueryAvgNanos:       avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		GroundTruthCount:    b.GroundTruthCount.Load(),
		GroundTruthAvgNanos: avg(b.GroundTruthNanos.Load(), b.GroundTruthCount.Load()),
		VectorsScanned:      b.VectorsScanned.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrialCount          int64
	TrialErrors         int64
	TrialAvgNanos       int64
	QueryCount          int64
	QueryErrors         int64
	QueryAvgNanos       int64
	GroundTruthCount    int64
	GroundTruthAvgNanos int64
	VectorsScanned      int64
}
