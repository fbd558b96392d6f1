// Package prometheus exports evaluation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c := annprom.New(reg)
//	ev, _ := annrecall.New(ds, idx, cfg, annrecall.WithMetricsCollector(c))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/annrecall"
)

const namespace = "annrecall"

// Collector implements annrecall.MetricsCollector with Prometheus metrics.
type Collector struct {
	trialLatency *prom.HistogramVec
	queryLatency *prom.HistogramVec
	gtLatency    prom.Histogram
	scanned      prom.Counter
}

var _ annrecall.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// It panics if registration fails, like prometheus.MustRegister.
func New(reg prom.Registerer) *Collector {
	c := &Collector{
		trialLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_duration_seconds",
			Help:      "Duration of recall trials, ground truth included.",
			Buckets:   prom.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"status"}),
		queryLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of approximate index queries.",
			Buckets:   prom.ExponentialBuckets(0.00001, 2, 16),
		}, []string{"status"}),
		gtLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "ground_truth_duration_seconds",
			Help:      "Duration of exact brute-force scans.",
			Buckets:   prom.DefBuckets,
		}),
		scanned: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "vectors_scanned_total",
			Help:      "Vectors compared during exact scans.",
		}),
	}
	reg.MustRegister(c.trialLatency, c.queryLatency, c.gtLatency, c.scanned)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordTrial implements annrecall.MetricsCollector.
func (c *Collector) RecordTrial(_ int, d time.Duration, err error) {
	c.trialLatency.WithLabelValues(status(err)).Observe(d.Seconds())
}

// RecordQuery implements annrecall.MetricsCollector.
func (c *Collector) RecordQuery(_ int, d time.Duration, err error) {
	c.queryLatency.WithLabelValues(status(err)).Observe(d.Seconds())
}

// RecordGroundTruth implements annrecall.MetricsCollector.
func (c *Collector) RecordGroundTruth(n int, d time.Duration) {
	c.gtLatency.Observe(d.Seconds())
	c.scanned.Add(float64(n))
}
